package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
)

// fakePlatform is an httptest GraphQL server with an in-memory store of
// secret managers, users and user groups keyed by name.
type fakePlatform struct {
	t   *testing.T
	srv *httptest.Server

	mu       sync.Mutex
	managers map[string]string
	users    map[string]string
	groups   map[string]string
	nextID   int
	requests []fakeRequest
	apiKeys  []string

	// lookupStatus, when set, is returned as the HTTP status of every lookup.
	lookupStatus int
}

type fakeRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

func newFakePlatform(t *testing.T) *fakePlatform {
	t.Helper()
	p := &fakePlatform{
		t:        t,
		managers: map[string]string{},
		users:    map[string]string{},
		groups:   map[string]string{},
	}
	p.srv = httptest.NewServer(http.HandlerFunc(p.serve))
	t.Cleanup(p.srv.Close)
	return p
}

func (p *fakePlatform) serve(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var req fakeRequest
	data, _ := io.ReadAll(r.Body)
	if err := json.Unmarshal(data, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	p.requests = append(p.requests, req)
	p.apiKeys = append(p.apiKeys, r.Header.Get("X-Api-Key"))

	isLookup := strings.Contains(req.Query, "ByName(")
	if isLookup && p.lookupStatus != 0 {
		w.WriteHeader(p.lookupStatus)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.Contains(req.Query, "__typename"):
		p.write(w, `{"data":{"__typename":"Query"}}`)
	case strings.Contains(req.Query, "secretManagerByName("):
		p.lookup(w, "secretManagerByName", p.managers, req.Variables["name"], "Secret Manager does not exist")
	case strings.Contains(req.Query, "userByName("):
		p.lookup(w, "userByName", p.users, req.Variables["userName"], "User does not exist")
	case strings.Contains(req.Query, "userGroupByName("):
		p.lookup(w, "userGroupByName", p.groups, req.Variables["userGroupName"], "No User Group exists")
	case strings.Contains(req.Query, "createUserGroup("):
		in := req.Variables["userGroup"].(map[string]any)
		id := p.id("group")
		p.groups[in["name"].(string)] = id
		p.write(w, fmt.Sprintf(`{"data":{"createUserGroup":{"userGroup":{"id":%q}}}}`, id))
	case strings.Contains(req.Query, "createUser("):
		in := req.Variables["user"].(map[string]any)
		id := p.id("user")
		p.users[in["name"].(string)] = id
		p.write(w, fmt.Sprintf(`{"data":{"createUser":{"user":{"id":%q}}}}`, id))
	case strings.Contains(req.Query, "createSecret("):
		p.write(w, fmt.Sprintf(`{"data":{"createSecret":{"secret":{"id":%q}}}}`, p.id("secret")))
	default:
		p.write(w, `{"errors":[{"message":"unknown operation"}]}`)
	}
}

func (p *fakePlatform) lookup(w http.ResponseWriter, field string, store map[string]string, name any, sentinel string) {
	id, ok := store[fmt.Sprint(name)]
	if !ok {
		p.write(w, fmt.Sprintf(`{"data":{%q:null},"errors":[{"message":%q}]}`, field, sentinel))
		return
	}
	p.write(w, fmt.Sprintf(`{"data":{%q:{"id":%q}}}`, field, id))
}

func (p *fakePlatform) write(w http.ResponseWriter, body string) {
	_, _ = w.Write([]byte(body))
}

func (p *fakePlatform) id(prefix string) string {
	p.nextID++
	return fmt.Sprintf("%s-%d", prefix, p.nextID)
}

// count returns how many requests contained fragment.
func (p *fakePlatform) count(fragment string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, r := range p.requests {
		if strings.Contains(r.Query, fragment) {
			n++
		}
	}
	return n
}

func (p *fakePlatform) total() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

// connArgs are the global flags pointing a command at the fake platform.
func (p *fakePlatform) connArgs() []string {
	return []string{"--endpoint", p.srv.URL, "--api-key", "test-key"}
}

type runResult struct {
	stdout string
	stderr string
	code   int
}

func runCommand(t *testing.T, cmd *cobra.Command, args ...string) runResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	code := execute(cmd)
	return runResult{stdout: stdout.String(), stderr: stderr.String(), code: code}
}
