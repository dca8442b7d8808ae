package main

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/janhq/trading-agents/internal/domain/llmmodel"
	"github.com/janhq/trading-agents/internal/interfaces/httpserver/responses"
)

func newModelsCmd() *cobra.Command {
	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "Inspect the model catalog and agent routing",
		Long:  `Inspect the models registered from provider credentials, the role policy and cost estimates.`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List registered models",
		Args:  cobra.NoArgs,
		RunE:  runModelsList,
	}
	listCmd.Flags().String("provider", "", "Only models of this provider (openai, deepseek, anthropic, local)")
	listCmd.Flags().String("type", "", "Only models recommended for this type (reasoning, fast, analysis, chat)")
	listCmd.Flags().StringP("format", "o", formatTable, "Output format: table, json, yaml")

	routeCmd := &cobra.Command{
		Use:   "route <role>",
		Short: "Show the model an agent role resolves to",
		Args:  cobra.ExactArgs(1),
		RunE:  runModelsRoute,
	}

	rolesCmd := &cobra.Command{
		Use:   "roles",
		Short: "Show the role policy",
		Args:  cobra.NoArgs,
		RunE:  runModelsRoles,
	}
	rolesCmd.Flags().StringP("format", "o", formatTable, "Output format: table, json, yaml")

	costCmd := &cobra.Command{
		Use:   "cost <model> <tokens>",
		Short: "Estimate the cost of a call",
		Args:  cobra.ExactArgs(2),
		RunE:  runModelsCost,
	}

	capsCmd := &cobra.Command{
		Use:   "capabilities <model>",
		Short: "Show the capability record of a model",
		Args:  cobra.ExactArgs(1),
		RunE:  runModelsCapabilities,
	}
	capsCmd.Flags().StringP("format", "o", formatYAML, "Output format: json, yaml")

	modelsCmd.AddCommand(listCmd, routeCmd, rolesCmd, costCmd, capsCmd)
	return modelsCmd
}

func loadCatalog(cmd *cobra.Command) (*llmmodel.Registry, *llmmodel.Router, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	registry := llmmodel.NewRegistryFromCredentials(cfg.Credentials(), cliLogger(cmd))
	policy, err := llmmodel.LoadRolePolicy(cfg.AgentModelPolicyFile)
	if err != nil {
		return nil, nil, err
	}
	return registry, llmmodel.NewRouterWithPolicy(registry, policy), nil
}

func runModelsList(cmd *cobra.Command, _ []string) error {
	registry, _, err := loadCatalog(cmd)
	if err != nil {
		return err
	}

	models := registry.GetAll()
	if raw, _ := cmd.Flags().GetString("provider"); raw != "" {
		provider, ok := llmmodel.ParseProviderKind(raw)
		if !ok {
			return fmt.Errorf("unknown provider %q", raw)
		}
		models = keep(models, registry.GetByProvider(provider))
	}
	if raw, _ := cmd.Flags().GetString("type"); raw != "" {
		modelType, ok := llmmodel.ParseModelType(raw)
		if !ok {
			return fmt.Errorf("unknown model type %q", raw)
		}
		models = keep(models, registry.GetByRecommendedType(modelType))
	}

	ids := make([]string, 0, len(models))
	for id := range models {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	format, _ := cmd.Flags().GetString("format")
	if format != formatTable {
		out := make([]responses.ModelResponse, 0, len(ids))
		for _, id := range ids {
			out = append(out, responses.NewModelResponse(id, models[id]))
		}
		return writeStructured(cmd.OutOrStdout(), format, out)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPROVIDER\tMODEL\tMAX TOKENS\tFUNCTIONS\tCOST/1K")
	for _, id := range ids {
		m := models[id]
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%t\t%s\n", id, m.Provider, m.ModelName, m.MaxTokens, m.SupportsFunctionCalling, m.CostPer1KTokens)
	}
	return w.Flush()
}

func runModelsRoute(cmd *cobra.Command, args []string) error {
	registry, router, err := loadCatalog(cmd)
	if err != nil {
		return err
	}

	role := args[0]
	model := router.ModelForRole(role)
	fmt.Fprintln(cmd.OutOrStdout(), model)

	if !router.HasRole(role) {
		fmt.Fprintf(cmd.ErrOrStderr(), "note: role %q is not mapped, using the default model\n", role)
	}
	if _, ok := registry.Get(model); !ok {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: model %q is not registered, check its provider credential\n", model)
	}
	return nil
}

func runModelsRoles(cmd *cobra.Command, _ []string) error {
	_, router, err := loadCatalog(cmd)
	if err != nil {
		return err
	}

	roles := router.Roles()
	format, _ := cmd.Flags().GetString("format")
	if format != formatTable {
		return writeStructured(cmd.OutOrStdout(), format, llmmodel.RolePolicy{Default: router.DefaultModel(), Roles: roles})
	}

	names := make([]string, 0, len(roles))
	for role := range roles {
		names = append(names, role)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ROLE\tMODEL")
	for _, role := range names {
		fmt.Fprintf(w, "%s\t%s\n", role, roles[role])
	}
	fmt.Fprintf(w, "*\t%s\n", router.DefaultModel())
	return w.Flush()
}

func runModelsCost(cmd *cobra.Command, args []string) error {
	registry, router, err := loadCatalog(cmd)
	if err != nil {
		return err
	}

	tokens, err := strconv.ParseFloat(args[1], 64)
	if err != nil || tokens < 0 || math.IsNaN(tokens) || math.IsInf(tokens, 0) {
		return fmt.Errorf("tokens must be a finite non-negative number, got %q", args[1])
	}

	fmt.Fprintln(cmd.OutOrStdout(), router.EstimateCost(args[0], tokens).String())
	if _, ok := registry.Get(args[0]); !ok {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: model %q is not registered, cost reported as zero\n", args[0])
	}
	return nil
}

func runModelsCapabilities(cmd *cobra.Command, args []string) error {
	_, router, err := loadCatalog(cmd)
	if err != nil {
		return err
	}

	caps := router.Capabilities(args[0])
	if caps.IsZero() {
		return fmt.Errorf("model %q is not registered", args[0])
	}
	format, _ := cmd.Flags().GetString("format")
	return writeStructured(cmd.OutOrStdout(), format, responses.CapabilitiesResponse{ID: args[0], Capabilities: caps})
}

func keep(all, subset map[string]llmmodel.ModelConfig) map[string]llmmodel.ModelConfig {
	out := make(map[string]llmmodel.ModelConfig, len(subset))
	for id := range subset {
		if cfg, ok := all[id]; ok {
			out[id] = cfg
		}
	}
	return out
}
