package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"lakeboot/internal/config"
)

func newConfigCmd(d *deps, opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the settings file",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newConfigShowCmd(d, opts))
	return cmd
}

type resolvedConfig struct {
	Settings  *config.Config    `json:"settings"`
	Endpoint  string            `json:"endpoint"`
	Region    string            `json:"region"`
	AccessKey string            `json:"access_key"`
	SecretKey string            `json:"secret_key"`
	UseSSL    bool              `json:"use_ssl"`
	DataPath  string            `json:"data_path"`
	Sources   map[string]string `json:"sources"`
}

func newConfigShowCmd(d *deps, opts *rootOptions) *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display the settings and resolved storage credentials",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := opts.load(d)
			if err != nil {
				return err
			}
			access, secret := e.creds.AccessKey, e.creds.SecretKey
			if !reveal {
				access, secret = config.MaskSecret(access), config.MaskSecret(secret)
			}
			out := cmd.OutOrStdout()

			if getOutputFormat(cmd) == "json" {
				settings := *e.cfg
				if !reveal {
					settings.Storage.AccessKey = config.MaskSecret(settings.Storage.AccessKey)
					settings.Storage.SecretKey = config.MaskSecret(settings.Storage.SecretKey)
				}
				return printJSON(out, resolvedConfig{
					Settings:  &settings,
					Endpoint:  e.creds.EndpointURL(),
					Region:    e.creds.Region,
					AccessKey: access,
					SecretKey: secret,
					UseSSL:    e.creds.UseSSL,
					DataPath:  e.cfg.DataPath(),
					Sources:   e.creds.Sources,
				})
			}

			data, err := e.cfg.Marshal(reveal)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, "# %s\n%s\n# resolved\n", e.cfg.Path, data)
			_, _ = fmt.Fprintf(out, "data_path: %s\nendpoint: %s\nuse_ssl: %t\n", e.cfg.DataPath(), e.creds.EndpointURL(), e.creds.UseSSL)
			fields := map[string]string{
				"access_key": access,
				"secret_key": secret,
				"endpoint":   e.creds.Endpoint,
				"region":     e.creds.Region,
			}
			keys := make([]string, 0, len(fields))
			for k := range fields {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				_, _ = fmt.Fprintf(out, "%s: %s  # from %s\n", k, fields[k], e.creds.Sources[k])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "Show credentials unmasked")
	return cmd
}
