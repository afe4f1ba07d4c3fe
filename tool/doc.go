// Package tool provides the tools offered to function-calling models and the
// registry that dispatches model-selected calls by name.
//
// # Tools
//
// A Tool is a langchaingo tools.Tool that also publishes the JSON schema of
// its arguments. Typed Go functions become tools through NewFunc:
//
//	type cityArgs struct {
//		City string `json:"city"`
//	}
//
//	weather := tool.NewFunc("get_weather", "Get real-time weather for a city.",
//		tool.Object(map[string]any{"city": tool.String("City name.")}, "city"),
//		func(ctx context.Context, args cityArgs) (string, error) {
//			return tool.JSON(map[string]any{"city": args.City, "temp": "22°C"})
//		})
//
// Two ready-made sets are included. AssistantTools holds get_current_time,
// get_weather_from_ip (ipinfo.io + open-meteo), write_txt_file and
// generate_qr_code. DemoTools holds get_weather, get_time, search_wikipedia,
// calculate_distance and convert_currency, which return fixed sample data.
//
// # Dispatch
//
// A Registry is built once from a fixed set of tools:
//
//	reg, err := tool.NewRegistry(tool.DemoTools(nil)...)
//	if err != nil {
//		return err
//	}
//
//	out, err := reg.Dispatch(ctx, "calculate_distance", `{"city1":"London","city2":"Paris"}`)
//
// Dispatch returns ErrUnknownTool for any name outside the registry and
// ErrInvalidArguments when the arguments are not a JSON object matching the
// tool's schema. Definitions and OpenAITools describe the registered tools
// for langchaingo and go-openai requests respectively.
package tool
