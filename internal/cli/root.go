// Package cli implementa petsync, el cliente de línea de comandos del
// marketplace: cada comando arma un petstore.Store contra la API.
package cli

import (
	"github.com/spf13/cobra"
)

// Global flag values.
type rootFlags struct {
	configFile string
	apiURL     string
	userID     string
	token      string
	json       bool
}

// NewRootCommand arma el árbol de comandos. Cada llamada es independiente
// (los tests crean uno por caso).
func NewRootCommand() *cobra.Command {
	flags := &rootFlags{}
	var a *app

	root := &cobra.Command{
		Use:           "petsync",
		Short:         "petsync sincroniza tus mascotas publicadas en el marketplace",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(flags.configFile, cmd.Flags())
			if err != nil {
				return err
			}
			a, err = newApp(cfg, cmd.ErrOrStderr())
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a != nil {
				a.close()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "config file (default: ./petsync.yaml or ~/.config/petsync/petsync.yaml)")
	pf.StringVar(&flags.apiURL, "api-url", "", "backend base URL (env PETSYNC_API_URL)")
	pf.StringVar(&flags.userID, "user", "", "current user id (env PETSYNC_USER_ID)")
	pf.StringVar(&flags.token, "token", "", "bearer token; empty uses the dev debug header (env PETSYNC_TOKEN)")
	pf.BoolVar(&flags.json, "json", false, "output as JSON")

	appOf := func() *app { return a }

	root.AddCommand(
		newListCmd(appOf, flags),
		newCreateCmd(appOf, flags),
		newUpdateCmd(appOf, flags),
		newDeleteCmd(appOf),
		newUploadCmd(appOf),
		newWatchCmd(appOf),
	)
	return root
}
