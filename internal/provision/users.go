package provision

import (
	"context"
	"fmt"

	"github.com/blackwell-systems/harness-provisioner/internal/harness"
)

// UserRequest asks for a new user assigned to groups named by group name.
type UserRequest struct {
	Name   string
	Email  string
	Groups []string
}

// UserResult is the outcome of CreateUser.
type UserResult struct {
	ID     string
	Groups []GroupRef
}

// CreateUser makes sure every requested group exists, then creates the user
// in those groups.
func (p *Provisioner) CreateUser(ctx context.Context, req UserRequest) (*UserResult, error) {
	if len(req.Groups) == 0 {
		return nil, fmt.Errorf("user %q: at least one group is required", req.Name)
	}

	refs, err := p.EnsureGroups(ctx, req.Groups)
	result := &UserResult{Groups: refs}
	if err != nil {
		return result, err
	}

	seen := make(map[string]bool, len(refs))
	groupIDs := make([]string, 0, len(refs))
	for _, ref := range refs {
		if !seen[ref.ID] {
			seen[ref.ID] = true
			groupIDs = append(groupIDs, ref.ID)
		}
	}

	id, err := p.api.CreateUser(ctx, harness.CreateUserInput{
		Name:         req.Name,
		Email:        req.Email,
		UserGroupIDs: groupIDs,
	})
	if err != nil {
		return result, err
	}
	result.ID = id
	p.logger.Info("user created", "user", req.Name, "id", id, "groups", len(groupIDs))
	return result, nil
}
