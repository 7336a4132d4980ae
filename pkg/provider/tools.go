package provider

import "github.com/Janani-6874/dataagent/pkg/api"

// ToolsFromDefinitions converts tool definitions advertised by executors
// into the provider's function tool format. Definitions without a name are
// dropped.
func ToolsFromDefinitions(defs []api.ToolDefinition) []ProviderTool {
	if len(defs) == 0 {
		return nil
	}
	tools := make([]ProviderTool, 0, len(defs))
	for _, d := range defs {
		if d.Name == "" {
			continue
		}
		tools = append(tools, ProviderTool{
			Type: "function",
			Function: ProviderFunctionDef{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  d.Parameters,
			},
		})
	}
	return tools
}
