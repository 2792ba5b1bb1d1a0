package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/harness-provisioner/internal/clierror"
	"github.com/blackwell-systems/harness-provisioner/internal/manifest"
	"github.com/blackwell-systems/harness-provisioner/internal/provision"
)

type secretsOptions struct {
	manager string
	names   string
	values  string
	file    string
}

// NewSecretsCommand builds the provision-secrets command tree.
func NewSecretsCommand(version string) *cobra.Command {
	var opts secretsOptions

	cmd := newRootCommand(
		"provision-secrets",
		"Create encrypted secrets under a secret manager",
		`Create one or more encrypted text secrets stored by the secret manager
with the given name. Names and values are comma separated and matched by
position: the first name gets the first value, and so on.

Every secret is scoped to all applications in production and non-production
environments.

Examples:
  provision-secrets -m "Harness Secrets Manager - GCP KMS" \
    -n "Amazon password, Google cloud password, Azure credentials" \
    -v "AmaZonPwd, GCpWd, aZurEpWd"

  provision-secrets -f secrets.yaml`,
		version,
	)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		req, err := opts.request()
		if err != nil {
			return usageError(cmd, "%v", err)
		}

		s, err := newSession(cmd, true)
		if err != nil {
			return err
		}
		return runSecrets(cmd.Context(), s, req)
	}

	cmd.Flags().StringVarP(&opts.manager, "secret-manager-name", "m", "", "Secret manager name as shown in the platform UI")
	cmd.Flags().StringVarP(&opts.names, "secret-names", "n", "", "Comma separated secret names")
	cmd.Flags().StringVarP(&opts.values, "secret-values", "v", "", "Comma separated secret values, in the order of --secret-names")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Manifest file (.yaml, .yml or .json) with secretManager and secrets")

	return cmd
}

// request validates the input and builds the secrets request. It never
// touches the network.
func (o secretsOptions) request() (provision.SecretsRequest, error) {
	if o.file != "" {
		if o.manager != "" || o.names != "" || o.values != "" {
			return provision.SecretsRequest{}, fmt.Errorf("--file cannot be combined with --secret-manager-name, --secret-names or --secret-values")
		}
		return secretsFromManifest(o.file)
	}

	if o.manager == "" {
		return provision.SecretsRequest{}, fmt.Errorf("--secret-manager-name is required")
	}
	names, err := splitList("secret-names", o.names)
	if err != nil {
		return provision.SecretsRequest{}, err
	}
	if len(names) == 0 {
		return provision.SecretsRequest{}, fmt.Errorf("--secret-names is required")
	}
	values, err := splitList("secret-values", o.values)
	if err != nil {
		return provision.SecretsRequest{}, err
	}
	if len(values) == 0 {
		return provision.SecretsRequest{}, fmt.Errorf("--secret-values is required")
	}

	secrets, err := provision.PairSecrets(names, values)
	if err != nil {
		return provision.SecretsRequest{}, err
	}
	return provision.SecretsRequest{Manager: o.manager, Secrets: secrets}, nil
}

func secretsFromManifest(path string) (provision.SecretsRequest, error) {
	m, err := manifest.Load(path)
	if err != nil {
		return provision.SecretsRequest{}, err
	}
	if err := m.Validate().Err(); err != nil {
		return provision.SecretsRequest{}, err
	}
	if len(m.Secrets) == 0 {
		return provision.SecretsRequest{}, fmt.Errorf("%s: no secrets listed", path)
	}

	req := provision.SecretsRequest{Manager: m.SecretManager}
	for _, sec := range m.Secrets {
		req.Secrets = append(req.Secrets, provision.Secret{Name: sec.Name, Value: sec.Value})
	}
	return req, nil
}

func runSecrets(ctx context.Context, s *session, req provision.SecretsRequest) error {
	s.out.info("→ Creating %d secret(s) with secret manager %q...", len(req.Secrets), req.Manager)

	result, err := s.prov.CreateSecrets(ctx, req)
	if err != nil {
		s.out.fail("Failed to resolve secret manager %q: %v", req.Manager, err)
		return s.classify("resolve secret manager", err)
	}

	s.out.plain(" Created secrets:")
	for _, item := range result.Items {
		if item.Err == nil {
			s.out.plain("    %s", item.ID)
		}
	}

	if failed := result.Failed(); failed > 0 {
		for _, item := range result.Items {
			if item.Err != nil {
				s.out.fail("Secret %q not created: %v", item.Name, item.Err)
			}
		}
		return clierror.NewOperationError(fmt.Sprintf("%d of %d secrets not created", failed, len(result.Items)), nil)
	}

	s.out.success("%d secret(s) created", len(result.Items))
	return nil
}
