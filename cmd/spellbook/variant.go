package main

import (
	"fmt"
	"strings"

	glamour "charm.land/glamour/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/commanderspellbook/variantengine/internal/model"
)

var variantCmd = &cobra.Command{
	Use:   "variant",
	Short: "Inspect or freeze individual variants",
}

var variantShowCmd = &cobra.Command{
	Use:   "show <fingerprint>",
	Short: "Render one variant's card text as markdown",
	Args:  cobra.ExactArgs(1),
	RunE:  runVariantShow,
}

var variantFreezeCmd = &cobra.Command{
	Use:   "freeze <fingerprint>",
	Short: "Freeze a variant so the generator never rewrites or deletes it",
	Args:  cobra.ExactArgs(1),
	RunE:  runVariantFreeze,
}

func init() {
	variantCmd.AddCommand(variantShowCmd)
	variantCmd.AddCommand(variantFreezeCmd)
}

func runVariantShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	store, err := openStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}

	existing, err := store.ExistingVariants(ctx)
	if err != nil {
		return fmt.Errorf("read variants: %w", err)
	}
	v, ok := existing[args[0]]
	if !ok {
		return fmt.Errorf("no variant with fingerprint %q", args[0])
	}

	width := 100
	if w, _, err := term.GetSize(0); err == nil && w > 0 {
		width = w
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fmt.Errorf("build renderer: %w", err)
	}

	out, err := renderer.Render(variantMarkdown(v))
	if err != nil {
		return fmt.Errorf("render variant: %w", err)
	}
	fmt.Print(out)
	return nil
}

func variantMarkdown(v *model.Variant) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Variant `%s`\n\n", v.UniqueID)
	fmt.Fprintf(&b, "**Status:** %s  **Identity:** %s  **Legal:** %t\n\n", v.Status, v.Identity, v.Legal)
	if v.Description != "" {
		fmt.Fprintf(&b, "## Description\n\n%s\n\n", v.Description)
	}
	if v.OtherPrerequisites != "" {
		fmt.Fprintf(&b, "## Other Prerequisites\n\n%s\n\n", v.OtherPrerequisites)
	}
	if v.ManaNeeded != "" {
		fmt.Fprintf(&b, "## Mana Needed\n\n%s\n\n", v.ManaNeeded)
	}
	if v.ZoneLocations != "" {
		fmt.Fprintf(&b, "## Zone Locations\n\n%s\n\n", v.ZoneLocations)
	}
	if v.CardsState != "" {
		fmt.Fprintf(&b, "## Card States\n\n%s\n\n", v.CardsState)
	}
	return b.String()
}

func runVariantFreeze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	store, err := openStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}

	existing, err := store.ExistingVariants(ctx)
	if err != nil {
		return fmt.Errorf("read variants: %w", err)
	}
	v, ok := existing[args[0]]
	if !ok {
		return fmt.Errorf("no variant with fingerprint %q", args[0])
	}
	v.Status = model.StatusFrozen

	if err := store.CommitVariants(ctx, map[string]*model.Variant{args[0]: v}, nil); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	fmt.Println(okStyle.Render(fmt.Sprintf("frozen: %s", args[0])))
	return nil
}
