// Package provisioner provisions users, user groups and encrypted secrets on
// a Harness account through its GraphQL API.
//
// # Overview
//
// The repository ships two commands:
//   - provision-secrets creates encrypted text secrets under a named secret manager
//   - provision-users creates a user in up to five groups, or a group with existing members
//
// Groups a user is assigned to are created on demand. Names that cannot be
// resolved are reported rather than guessed at, and nothing is rolled back.
//
// # Installation
//
//	go install github.com/blackwell-systems/harness-provisioner/cmd/provision-secrets@latest
//	go install github.com/blackwell-systems/harness-provisioner/cmd/provision-users@latest
//
// # Quick Start
//
//	export HARNESS_API_KEY=...
//	export HARNESS_ACCOUNT_ID=...
//	provision-users ping
//	provision-users -a create_user -u avatar -e avatar@example.com -g "Account Administrator, Avatars"
//	provision-secrets -m "Harness Secrets Manager - GCP KMS" -n "db password" -v "s3cr3t"
//
// # Configuration
//
// Settings resolve as flags > HARNESS_* environment variables >
// ~/.harness-provisioner/config.yaml > defaults. Run "config" on either
// command to print the effective values.
package provisioner
