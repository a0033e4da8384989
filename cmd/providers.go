package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"urlembed/internal/provider"
	"urlembed/internal/ui"
)

var flagProvidersJSON bool

var providersCmd = &cobra.Command{
	Use:   "providers [url]",
	Short: "List registered providers, or show which one handles a URL",
	Args:  cobra.MaximumNArgs(1),
	RunE:  providersRun,
}

func init() {
	providersCmd.Flags().BoolVarP(&flagProvidersJSON, "json", "j", false, "Output providers as JSON")
}

type providerInfo struct {
	Name     string   `json:"name"`
	Strategy string   `json:"strategy"`
	APIURL   string   `json:"api_url,omitempty"`
	Patterns []string `json:"patterns"`
}

func providersRun(cmd *cobra.Command, args []string) error {
	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}

	providers := eng.Providers()
	if len(args) == 1 {
		p, ok := eng.Lookup(args[0])
		if !ok {
			return fmt.Errorf("no provider matches %s", args[0])
		}
		providers = []provider.Provider{p}
	}

	if flagProvidersJSON {
		infos := make([]providerInfo, 0, len(providers))
		for _, p := range providers {
			info := providerInfo{Name: p.Name()}
			if g, ok := p.(*provider.Generic); ok {
				info.Strategy = g.Strategy().String()
				info.APIURL = g.APIURL()
				info.Patterns = g.Patterns()
			}
			infos = append(infos, info)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	fmt.Print(ui.RenderProviders(providers))
	return nil
}
