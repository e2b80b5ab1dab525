package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	seoform "github.com/goliatone/go-seoform"
	"github.com/goliatone/go-seoform/pkg/config"
	"github.com/goliatone/go-seoform/pkg/discovery"
	"github.com/goliatone/go-seoform/pkg/entity"
	"github.com/goliatone/go-seoform/pkg/fields"
	"github.com/goliatone/go-seoform/pkg/formtree"
	"github.com/goliatone/go-seoform/pkg/markup"
	"github.com/goliatone/go-seoform/pkg/projector"
)

func newAttachCommand(a *app) *cobra.Command {
	spec := fields.DefaultSpec()
	var interactive bool

	cmd := &cobra.Command{
		Use:   "attach <entity-type> <bundle>",
		Short: "Attach the SEO field to a bundle",
		Long: `Attach creates the field storage when missing, adds the field to the bundle
and registers it in the default form and view displays. Running it again is a no-op.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if interactive {
				label, err := a.prompter.Input(ctx, "Field label", spec.Label)
				if err != nil {
					return err
				}
				spec.Label = label
				if spec.Translatable, err = a.prompter.Confirm(ctx, "Translatable?", spec.Translatable); err != nil {
					return err
				}
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			manager := seoform.NewFieldManager(store, fields.WithLogger(a.logger), fields.WithMetrics(a.metrics))
			if err := manager.Attach(ctx, args[0], args[1], spec); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "attached %s to %s.%s\n", spec.FieldName, args[0], args[1])
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&spec.FieldName, "field", spec.FieldName, "machine name of the SEO field")
	flags.StringVar(&spec.Label, "label", spec.Label, "field label shown to editors")
	flags.StringVar(&spec.StorageType, "storage-type", spec.StorageType, "field storage type")
	flags.BoolVar(&spec.Translatable, "translatable", spec.Translatable, "mark the field translatable")
	flags.BoolVarP(&interactive, "interactive", "i", false, "prompt for the label and translatability")
	return cmd
}

func newDetachCommand(a *app) *cobra.Command {
	var (
		fieldName string
		force     bool
	)

	cmd := &cobra.Command{
		Use:   "detach <entity-type> <bundle>",
		Short: "Remove the SEO field from a bundle",
		Long:  `Detach deletes the bundle field. Field storage is left for the host to purge.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !force {
				ok, err := a.prompter.Confirm(ctx, fmt.Sprintf("Remove %s from %s.%s?", fieldName, args[0], args[1]), false)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "detach cancelled")
					return nil
				}
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			manager := seoform.NewFieldManager(store, fields.WithLogger(a.logger), fields.WithMetrics(a.metrics))
			if err := manager.Detach(ctx, args[0], args[1], fieldName); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "detached %s from %s.%s\n", fieldName, args[0], args[1])
			return nil
		},
	}

	cmd.Flags().StringVar(&fieldName, "field", fields.DefaultFieldName, "machine name of the SEO field")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")
	return cmd
}

func newStatusCommand(a *app) *cobra.Command {
	var fieldName string

	cmd := &cobra.Command{
		Use:   "status <entity-type> <bundle>",
		Short: "Report whether a bundle carries the SEO field",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			manager := seoform.NewFieldManager(store, fields.WithLogger(a.logger), fields.WithMetrics(a.metrics))
			attached, err := manager.IsAttached(cmd.Context(), args[0], args[1], fieldName)
			if err != nil {
				return err
			}
			state := "detached"
			if attached {
				state = "attached"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s.%s.%s: %s\n", args[0], args[1], fieldName, state)
			return nil
		},
	}

	cmd.Flags().StringVar(&fieldName, "field", fields.DefaultFieldName, "machine name of the SEO field")
	return cmd
}

func newProjectCommand(a *app) *cobra.Command {
	var (
		formPath   string
		entityPath string
		outputPath string
		siteName   string
		siteSlogan string
		settings   bool
	)

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project SEO settings and widget markup into a form tree",
		Long: `Project reads an exported form tree (JSON), optionally the edited entity,
and writes the tree with the analysis widget settings and markup added.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			doc, err := a.loadConfig()
			if err != nil {
				return err
			}
			if siteName != "" {
				doc.Site[config.SiteName] = siteName
			}
			if siteSlogan != "" {
				doc.Site[config.SiteSlogan] = siteSlogan
			}

			data, err := os.ReadFile(formPath)
			if err != nil {
				return fmt.Errorf("read form: %w", err)
			}
			tree, err := formtree.Decode(data)
			if err != nil {
				return fmt.Errorf("decode form: %w", err)
			}

			state := projector.State{}
			if entityPath != "" {
				edited, err := readEntity(entityPath)
				if err != nil {
					return err
				}
				state.Edited = edited
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			renderer, err := markup.New(markup.WithScoreRules(doc.ScoreRules))
			if err != nil {
				return err
			}
			p := projector.New(store, discovery.NewHTMLTextProcessor(), renderer, doc.Site,
				projector.WithConfiguration(doc.FieldsConfiguration),
				projector.WithLogger(a.logger),
				projector.WithMetrics(a.metrics),
			)

			out, err := seoform.ProjectForm(ctx, p, tree, state)
			if err != nil {
				return err
			}

			var result any = out
			if settings {
				node, ok := out.Lookup(formtree.ParsePath(projector.SettingsPath))
				if !ok {
					a.logger.Info("form produced no settings", zap.String("form", formPath))
					node = formtree.NewComposite()
				}
				result = node
			}
			payload, err := indentJSON(result)
			if err != nil {
				return err
			}

			if outputPath == "" {
				_, err = cmd.OutOrStdout().Write(payload)
				return err
			}
			if err := os.WriteFile(outputPath, payload, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "projected form written to %s\n", outputPath)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&formPath, "form", "", "form tree JSON file")
	flags.StringVar(&entityPath, "entity", "", "edited entity JSON file")
	flags.StringVarP(&outputPath, "output", "o", "", "output file (stdout if empty)")
	flags.StringVar(&siteName, "site-name", "", "override the site name token")
	flags.StringVar(&siteSlogan, "site-slogan", "", "override the site slogan token")
	flags.BoolVar(&settings, "settings-only", false, "print only the projected settings dictionary")
	_ = cmd.MarkFlagRequired("form")
	return cmd
}

func readEntity(path string) (*entity.Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read entity: %w", err)
	}
	var out entity.Memory
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode entity: %w", err)
	}
	return &out, nil
}

func indentJSON(value any) ([]byte, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode output: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, fmt.Errorf("indent output: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
