// Package harness maps the platform's GraphQL schema onto typed calls:
// name lookups for secret managers, users and user groups, and the create
// mutations for users, user groups and encrypted text secrets.
package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/blackwell-systems/harness-provisioner/internal/graphql"
)

// Kind names a type of remote object that can be looked up by name.
type Kind string

const (
	KindSecretManager Kind = "secret manager"
	KindUser          Kind = "user"
	KindUserGroup     Kind = "user group"
)

// ErrMissingField is returned when a successful response lacks the
// identifier the operation is expected to produce.
var ErrMissingField = errors.New("response missing expected field")

// Lookup is the outcome of resolving a name. A zero Lookup means the object
// does not exist.
type Lookup struct {
	ID    string
	Found bool
}

// Doer executes a GraphQL request. *graphql.Client implements it.
type Doer interface {
	Do(ctx context.Context, req graphql.Request, out any) error
}

type lookupDef struct {
	field    string
	variable string
	query    string
	// sentinel is the message the service reports when the name is unknown.
	sentinel string
}

var lookups = map[Kind]lookupDef{
	KindSecretManager: {
		field:    "secretManagerByName",
		variable: "name",
		query:    secretManagerByNameQuery,
		sentinel: "Secret Manager does not exist",
	},
	KindUser: {
		field:    "userByName",
		variable: "userName",
		query:    userByNameQuery,
		sentinel: "User does not exist",
	},
	KindUserGroup: {
		field:    "userGroupByName",
		variable: "userGroupName",
		query:    userGroupByNameQuery,
		sentinel: "No User Group exists",
	},
}

// Client issues typed lookups and mutations.
type Client struct {
	gql Doer
}

// New wraps a GraphQL doer.
func New(gql Doer) *Client {
	return &Client{gql: gql}
}

// Resolve looks up the identifier of the kind object called name. An unknown
// name yields a zero Lookup and a nil error.
func (c *Client) Resolve(ctx context.Context, kind Kind, name string) (Lookup, error) {
	def, ok := lookups[kind]
	if !ok {
		return Lookup{}, fmt.Errorf("unknown kind %q", kind)
	}

	var data map[string]json.RawMessage
	err := c.gql.Do(ctx, graphql.Request{
		Query:     def.query,
		Variables: map[string]any{def.variable: name},
	}, &data)
	if err != nil {
		var appErr *graphql.ApplicationError
		if errors.As(err, &appErr) && appErr.Contains(def.sentinel) {
			return Lookup{}, nil
		}
		return Lookup{}, fmt.Errorf("lookup %s %q: %w", kind, name, err)
	}

	// An explicit null is the only absent outcome besides the sentinel. A
	// response without the field at all is malformed.
	raw, ok := data[def.field]
	if !ok {
		return Lookup{}, fmt.Errorf("lookup %s %q: %s: %w", kind, name, def.field, ErrMissingField)
	}
	if bytes.Equal(raw, []byte("null")) {
		return Lookup{}, nil
	}
	var node idNode
	if err := json.Unmarshal(raw, &node); err != nil {
		return Lookup{}, fmt.Errorf("lookup %s %q: decode %s: %w", kind, name, def.field, err)
	}
	if node.ID == "" {
		return Lookup{}, fmt.Errorf("lookup %s %q: %s.id: %w", kind, name, def.field, ErrMissingField)
	}
	return Lookup{ID: node.ID, Found: true}, nil
}

// CreateUser creates a user assigned to the given groups. A client mutation
// id is generated when in leaves it empty.
func (c *Client) CreateUser(ctx context.Context, in CreateUserInput) (string, error) {
	if in.ClientMutationID == "" {
		in.ClientMutationID = uuid.NewString()
	}
	if in.UserGroupIDs == nil {
		in.UserGroupIDs = []string{}
	}

	var data createUserData
	if err := c.gql.Do(ctx, graphql.Request{
		Query:     createUserMutation,
		Variables: map[string]any{"user": in},
	}, &data); err != nil {
		return "", fmt.Errorf("create user %q: %w", in.Name, err)
	}

	if data.CreateUser == nil || data.CreateUser.User == nil || data.CreateUser.User.ID == "" {
		return "", fmt.Errorf("create user %q: createUser.user.id: %w", in.Name, ErrMissingField)
	}
	return data.CreateUser.User.ID, nil
}

// CreateUserGroup creates a group with optional initial members.
func (c *Client) CreateUserGroup(ctx context.Context, in CreateUserGroupInput) (string, error) {
	var data createUserGroupData
	if err := c.gql.Do(ctx, graphql.Request{
		Query:     createUserGroupMutation,
		Variables: map[string]any{"userGroup": in},
	}, &data); err != nil {
		return "", fmt.Errorf("create user group %q: %w", in.Name, err)
	}

	if data.CreateUserGroup == nil || data.CreateUserGroup.UserGroup == nil || data.CreateUserGroup.UserGroup.ID == "" {
		return "", fmt.Errorf("create user group %q: createUserGroup.userGroup.id: %w", in.Name, ErrMissingField)
	}
	return data.CreateUserGroup.UserGroup.ID, nil
}

// CreateSecret creates an encrypted text secret. An empty usage scope is
// replaced by DefaultUsageScope.
func (c *Client) CreateSecret(ctx context.Context, in EncryptedTextInput) (string, error) {
	if len(in.UsageScope.AppEnvScopes) == 0 {
		in.UsageScope = DefaultUsageScope()
	}

	var data createSecretData
	if err := c.gql.Do(ctx, graphql.Request{
		Query: createSecretMutation,
		Variables: map[string]any{"secret": CreateSecretInput{
			SecretType:    SecretTypeEncryptedText,
			EncryptedText: &in,
		}},
	}, &data); err != nil {
		return "", fmt.Errorf("create secret %q: %w", in.Name, err)
	}

	if data.CreateSecret == nil || data.CreateSecret.Secret == nil || data.CreateSecret.Secret.ID == "" {
		return "", fmt.Errorf("create secret %q: createSecret.secret.id: %w", in.Name, ErrMissingField)
	}
	return data.CreateSecret.Secret.ID, nil
}
