package provision

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/blackwell-systems/harness-provisioner/internal/graphql"
	"github.com/blackwell-systems/harness-provisioner/internal/harness"
)

var errTransport = &graphql.TransportError{Err: errors.New("connection refused")}

// fakeAPI is an in-memory platform keyed by object name.
type fakeAPI struct {
	mu sync.Mutex

	managers map[string]string
	users    map[string]string
	groups   map[string]string

	// failResolve and failCreate make the named lookup or create fail.
	failResolve map[string]error
	failCreate  map[string]error

	nextID       int
	calls        []string
	createdGroup []harness.CreateUserGroupInput
	createdUser  []harness.CreateUserInput
	createdSec   []harness.EncryptedTextInput
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		managers:    map[string]string{},
		users:       map[string]string{},
		groups:      map[string]string{},
		failResolve: map[string]error{},
		failCreate:  map[string]error{},
	}
}

func (f *fakeAPI) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeAPI) Resolve(_ context.Context, kind harness.Kind, name string) (harness.Lookup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf("resolve %s: %s", kind, name))

	if err := f.failResolve[name]; err != nil {
		return harness.Lookup{}, err
	}

	var store map[string]string
	switch kind {
	case harness.KindSecretManager:
		store = f.managers
	case harness.KindUser:
		store = f.users
	case harness.KindUserGroup:
		store = f.groups
	}
	if id, ok := store[name]; ok {
		return harness.Lookup{ID: id, Found: true}, nil
	}
	return harness.Lookup{}, nil
}

func (f *fakeAPI) CreateUser(_ context.Context, in harness.CreateUserInput) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "create user "+in.Name)

	if err := f.failCreate[in.Name]; err != nil {
		return "", err
	}
	id := f.id("user")
	f.users[in.Name] = id
	f.createdUser = append(f.createdUser, in)
	return id, nil
}

func (f *fakeAPI) CreateUserGroup(_ context.Context, in harness.CreateUserGroupInput) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "create group "+in.Name)

	if err := f.failCreate[in.Name]; err != nil {
		return "", err
	}
	id := f.id("group")
	f.groups[in.Name] = id
	f.createdGroup = append(f.createdGroup, in)
	return id, nil
}

func (f *fakeAPI) CreateSecret(_ context.Context, in harness.EncryptedTextInput) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "create secret "+in.Name)

	if err := f.failCreate[in.Name]; err != nil {
		return "", err
	}
	id := f.id("secret")
	f.createdSec = append(f.createdSec, in)
	return id, nil
}

func (f *fakeAPI) countCalls(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}
