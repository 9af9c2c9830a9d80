package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/jask/budregistry/internal/catalog"
	"github.com/jask/budregistry/internal/config"
	"github.com/jask/budregistry/internal/product"
	"github.com/jask/budregistry/internal/secrets"
	"github.com/jask/budregistry/internal/service"
)

func newCatalogCmd() *cobra.Command {
	var (
		filters    []string
		query      string
		page       int
		pageSize   int
		asJSON     bool
		importPath string
	)
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print one filtered page of the catalog",
		Example: `  budregistry catalog --filter type=Bundle
  budregistry catalog --filter brand=pacific-bloom,kind-kitchen --page-size 12 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := catalog.ParseFilters(filters)
			if err != nil {
				return err
			}
			engine, err := buildCatalog(cmd.Context(), catalog.ParseLayout(cfg.Catalog.Layout), importPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("page-size") {
				if err := engine.SetPageSize(pageSize); err != nil {
					return err
				}
			}
			engine.SetFilters(f)
			engine.SetSearch(query)
			engine.SetPage(page)
			return printPage(cmd.OutOrStdout(), engine.View(), asJSON)
		},
	}
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "facet=value[,value] (brand, category, status, type); repeatable")
	cmd.Flags().StringVar(&query, "search", "", "name, brand or license substring")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", catalog.DefaultPageSize, "entries per page (6, 12 or 24)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.Flags().StringVar(&importPath, "import", "", "CSV of products to add first")
	return cmd
}

type pageJSON struct {
	Page       int                        `json:"page"`
	TotalPages int                        `json:"totalPages"`
	PageSize   int                        `json:"pageSize"`
	Filtered   int                        `json:"filtered"`
	Total      int                        `json:"total"`
	Filters    string                     `json:"filters,omitempty"`
	Items      []product.DashboardProduct `json:"items"`
}

func printPage(w io.Writer, v catalog.View, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(pageJSON{
			Page:       v.Page.Page,
			TotalPages: v.TotalPages,
			PageSize:   v.PageSize,
			Filtered:   v.Filtered,
			Total:      v.All,
			Filters:    v.Filters.String(),
			Items:      v.Items,
		})
	}
	t := table.New().Headers("ID", "Name", "Brands", "Category", "Type", "Markets", "Status")
	for _, it := range v.Items {
		t.Row(it.ID, it.Name, strings.Join(it.Brands, ", "), it.Category, string(it.Type),
			fmt.Sprintf("%d/%d", it.TotalMarkets(), it.MarketCapacity), it.EffectiveStatus())
	}
	_, err := fmt.Fprintf(w, "%s\n%s · %d of %d entries\n", t.Render(), v.Label(), v.Filtered, v.All)
	return err
}

func newGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate <description>",
		Short: "Draft a product record from free text with the configured model",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gen := &service.GeneratorService{Provider: buildProvider(), Log: logger.Named("generator")}
			p, err := gen.Draft(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if p == nil {
				return errors.New("no draft generated; check the API key and the log file")
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(p)
		},
	}
}

func newChatCmd() *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "chat <message>",
		Short: "Ask the assistant one question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conv, err := buildConversation(buildProvider())
			if err != nil {
				return err
			}
			reply, err := conv.Send(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			md := reply.Markdown()
			if !plain {
				r, err := glamour.NewTermRenderer(glamour.WithStandardStyle(cfg.UI.Theme), glamour.WithWordWrap(80))
				if err == nil {
					if out, err := r.Render(md); err == nil {
						md = out
					}
				}
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), md)
			return err
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print raw markdown")
	return cmd
}

func newKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage stored provider API keys",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set <provider> [key]",
		Short: "Store a key (read from stdin when omitted)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := ""
			if len(args) == 2 {
				key = args[1]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return err
				}
				key = line
			}
			key = strings.TrimSpace(key)
			if key == "" {
				return errors.New("empty key")
			}
			store, err := secrets.DefaultStore()
			if err != nil {
				return err
			}
			if err := store.Put(args[0], key); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "stored key for %s\n", args[0])
			return err
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List providers with a stored key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := secrets.DefaultStore()
			if err != nil {
				return err
			}
			providers, err := store.Providers()
			if err != nil {
				return err
			}
			for _, p := range providers {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), p); err != nil {
					return err
				}
			}
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <provider>",
		Short: "Remove a stored key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := secrets.DefaultStore()
			if err != nil {
				return err
			}
			if err := store.Delete(args[0]); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted key for %s\n", args[0])
			return err
		},
	})
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or initialise the config file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), config.Path())
			return err
		},
	})
	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s exists; use --force to overwrite", path)
			}
			if err := config.Save(cfg); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "wrote "+path)
			return err
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			rows := [][2]string{
				{"catalog.page_size", strconv.Itoa(cfg.Catalog.PageSize)},
				{"catalog.layout", cfg.Catalog.Layout},
				{"catalog.seed_file", cfg.Catalog.SeedFile},
				{"wizard.use_case", cfg.Wizard.UseCase},
				{"wizard.search_delay", cfg.Wizard.SearchDelay.String()},
				{"assistant.mode", cfg.Assistant.Mode},
				{"assistant.reply_delay", cfg.Assistant.ReplyDelay.String()},
				{"assistant.table_file", cfg.Assistant.TableFile},
				{"llm.provider", cfg.LLM.Provider},
				{"llm.api_key_env", cfg.LLM.APIKeyEnv},
				{"llm.model", cfg.LLM.Model},
				{"ui.theme", cfg.UI.Theme},
				{"log.level", cfg.Log.Level},
				{"log.file", cfg.Log.File},
			}
			for _, r := range rows {
				if _, err := fmt.Fprintf(w, "%-22s %s\n", r[0], r[1]); err != nil {
					return err
				}
			}
			return nil
		},
	})
	return cmd
}
