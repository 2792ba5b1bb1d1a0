package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/harness-provisioner/internal/clierror"
	"github.com/blackwell-systems/harness-provisioner/internal/manifest"
	"github.com/blackwell-systems/harness-provisioner/internal/provision"
)

// Actions accepted by --action.
const (
	actionCreateUser  = "create_user"
	actionCreateGroup = "create_group"
)

type usersOptions struct {
	action        string
	userName      string
	userEmail     string
	groupNames    string
	newGroupName  string
	newGroupUsers string
	file          string
}

// NewUsersCommand builds the provision-users command tree.
func NewUsersCommand(version string) *cobra.Command {
	var opts usersOptions

	cmd := newRootCommand(
		"provision-users",
		"Create users and user groups",
		`Create a user in up to five groups, or create a group with existing users
as members.

create_user: groups that do not exist yet are created first, without members,
and the user is assigned to all of them. A new invitation is emailed to the user.

create_group: members are named by user name. Names that do not match an
existing user are skipped and reported.

--action (or --file) is required and a missing action is a usage error. An
unrecognized action is reported as "Action not allowed" and nothing is done.

Examples:
  provision-users -a create_user -u "avatar" -e "avatar@example.com" \
    -g "Account Administrator, Avatars"

  provision-users -a create_group --new-group-name "Avatars" \
    --new-group-users "John Smith, Alice Bloom"

  provision-users -f users.yaml`,
		version,
	)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if opts.file != "" {
			if opts.action != "" {
				return usageError(cmd, "--file cannot be combined with --action")
			}
			m, err := loadUsersManifest(opts.file)
			if err != nil {
				return usageError(cmd, "%v", err)
			}
			s, err := newSession(cmd, true)
			if err != nil {
				return err
			}
			return runApplyManifest(cmd.Context(), s, m)
		}

		switch opts.action {
		case "":
			return usageError(cmd, "--action is required")
		case actionCreateUser:
			req, err := opts.userRequest()
			if err != nil {
				return usageError(cmd, "%v", err)
			}
			s, err := newSession(cmd, true)
			if err != nil {
				return err
			}
			return runCreateUser(cmd.Context(), s, req)
		case actionCreateGroup:
			req, err := opts.groupRequest()
			if err != nil {
				return usageError(cmd, "%v", err)
			}
			s, err := newSession(cmd, true)
			if err != nil {
				return err
			}
			return runCreateGroup(cmd.Context(), s, req)
		default:
			newPrinter(cmd).warn("Action not allowed: %s (use %s or %s)", opts.action, actionCreateUser, actionCreateGroup)
			return nil
		}
	}

	cmd.Flags().StringVarP(&opts.action, "action", "a", "", "Action to perform: create_user or create_group")
	cmd.Flags().StringVarP(&opts.userName, "user-name", "u", "", "create_user: name of the new user, e.g. \"John Smith\"")
	cmd.Flags().StringVarP(&opts.userEmail, "user-email", "e", "", "create_user: email address the invitation is sent to")
	cmd.Flags().StringVarP(&opts.groupNames, "group-names", "g", "", "create_user: comma separated group names (at most 5)")
	cmd.Flags().StringVar(&opts.newGroupName, "new-group-name", "", "create_group: name of the group to create")
	cmd.Flags().StringVar(&opts.newGroupUsers, "new-group-users", "", "create_group: comma separated names of existing users to add")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Manifest file (.yaml, .yml or .json) with groups and users")

	return cmd
}

func (o usersOptions) userRequest() (provision.UserRequest, error) {
	if o.userName == "" {
		return provision.UserRequest{}, fmt.Errorf("--user-name is required")
	}
	if o.userEmail == "" {
		return provision.UserRequest{}, fmt.Errorf("--user-email is required")
	}
	groups, err := splitList("group-names", o.groupNames)
	if err != nil {
		return provision.UserRequest{}, err
	}
	if len(groups) == 0 {
		return provision.UserRequest{}, fmt.Errorf("--group-names requires at least one group")
	}
	if len(groups) > manifest.MaxUserGroups {
		return provision.UserRequest{}, fmt.Errorf("--group-names lists %d groups (maximum %d)", len(groups), manifest.MaxUserGroups)
	}
	return provision.UserRequest{Name: o.userName, Email: o.userEmail, Groups: groups}, nil
}

func (o usersOptions) groupRequest() (provision.GroupRequest, error) {
	if o.newGroupName == "" {
		return provision.GroupRequest{}, fmt.Errorf("--new-group-name is required")
	}
	members, err := splitList("new-group-users", o.newGroupUsers)
	if err != nil {
		return provision.GroupRequest{}, err
	}
	return provision.GroupRequest{Name: o.newGroupName, Members: members}, nil
}

func loadUsersManifest(path string) (*manifest.Manifest, error) {
	m, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}
	if err := m.Validate().Err(); err != nil {
		return nil, err
	}
	if len(m.Groups) == 0 && len(m.Users) == 0 {
		return nil, fmt.Errorf("%s: no groups or users listed", path)
	}
	return m, nil
}

func runCreateUser(ctx context.Context, s *session, req provision.UserRequest) error {
	s.out.info("→ Creating user %q in %d group(s)...", req.Name, len(req.Groups))

	result, err := s.prov.CreateUser(ctx, req)
	if result != nil {
		printGroupRefs(s.out, result.Groups)
	}
	if err != nil {
		s.out.fail("User %q not created: %v", req.Name, err)
		return s.classify("create user", err)
	}

	s.out.success("User %q created: %s", req.Name, result.ID)
	return nil
}

func printGroupRefs(out printer, refs []provision.GroupRef) {
	for _, ref := range refs {
		if ref.Created {
			out.success("Group %q created: %s", ref.Name, ref.ID)
		} else {
			out.plain("  Group %q exists: %s", ref.Name, ref.ID)
		}
	}
}

func runCreateGroup(ctx context.Context, s *session, req provision.GroupRequest) error {
	s.out.info("→ Creating group %q...", req.Name)

	result, err := s.prov.CreateGroup(ctx, req)
	if err != nil {
		s.out.fail("Group %q not created: %v", req.Name, err)
		return s.classify("create group", err)
	}

	printGroupResult(s.out, result)
	return nil
}

func printGroupResult(out printer, result *provision.GroupResult) {
	if result.Existed {
		out.plain("  Group %q exists: %s (members unchanged)", result.Name, result.ID)
		return
	}
	out.success("Group %q created: %s", result.Name, result.ID)
	for _, m := range result.Enrolled {
		out.plain("    member %s (%s)", m.Name, m.ID)
	}
	for _, name := range result.Skipped {
		out.warn("User %q does not exist, not added to %q", name, result.Name)
	}
}

// runApplyManifest creates the manifest groups, then its users. Each entry
// succeeds or fails on its own; a transport failure stops the run.
func runApplyManifest(ctx context.Context, s *session, m *manifest.Manifest) error {
	s.out.info("→ Applying %d group(s) and %d user(s)...", len(m.Groups), len(m.Users))

	failed := 0
	for _, g := range m.Groups {
		result, err := s.prov.ApplyGroup(ctx, provision.GroupRequest{Name: g.Name, Members: g.Members})
		if err != nil {
			s.out.fail("Group %q not created: %v", g.Name, err)
			if cliErr := s.classify("create group", err); clierror.ExitCode(cliErr) == clierror.ExitServiceUnavailable {
				return cliErr
			}
			failed++
			continue
		}
		printGroupResult(s.out, result)
	}

	for _, u := range m.Users {
		if err := runCreateUser(ctx, s, provision.UserRequest{Name: u.Name, Email: u.Email, Groups: u.Groups}); err != nil {
			if clierror.ExitCode(err) == clierror.ExitServiceUnavailable {
				return err
			}
			failed++
		}
	}

	if failed > 0 {
		return clierror.NewOperationError(fmt.Sprintf("%d of %d entries failed", failed, len(m.Groups)+len(m.Users)), nil)
	}
	s.out.success("Manifest applied")
	return nil
}
