package reflection

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/agentpatterns/dataset"
	"github.com/smallnest/agentpatterns/display"
	"github.com/smallnest/agentpatterns/executor"
	"github.com/smallnest/agentpatterns/graph"
	"github.com/smallnest/agentpatterns/llms/provider"
	"github.com/smallnest/agentpatterns/log"
	"github.com/smallnest/agentpatterns/metrics"
	"github.com/smallnest/agentpatterns/parse"
	"github.com/smallnest/agentpatterns/store"
)

// GenerateChartCode asks model for matplotlib code that follows instruction and
// saves the figure to outPath. The raw response is returned, tags included.
func GenerateChartCode(ctx context.Context, model llms.Model, instruction, outPath string) (string, error) {
	content, err := provider.Complete(ctx, model, chartGenerationPrompt(instruction, outPath))
	if err != nil {
		return "", fmt.Errorf("failed to generate chart code: %w", err)
	}
	return content, nil
}

// ReflectOnImageAndRegenerate sends the rendered chart and the first version of
// the code to model and returns its feedback and the refined code wrapped in
// <execute_python> tags. The feedback is never empty.
func ReflectOnImageAndRegenerate(ctx context.Context, model *provider.Model, chartPath, instruction, outPathV2, codeV1 string) (string, string, error) {
	mime, data, err := provider.EncodeImage(chartPath)
	if err != nil {
		return "", "", err
	}

	messages := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(chartReflectionPrompt(codeV1, outPathV2, instruction)),
				provider.ImagePart(model.Provider, mime, data),
			},
		},
	}

	resp, err := model.GenerateContent(ctx, messages)
	if err != nil {
		return "", "", fmt.Errorf("failed to reflect on chart: %w", err)
	}
	content, err := provider.FirstChoice(resp)
	if err != nil {
		return "", "", fmt.Errorf("failed to reflect on chart: %w", err)
	}

	feedback := parse.ParseFeedback(content)
	code := parse.EnsureExecuteTags(parse.ExtractCode(content))
	return feedback, code, nil
}

// ChartWorkflowConfig configures RunChartWorkflow.
type ChartWorkflowConfig struct {
	DatasetPath string
	Instruction string

	// Generation writes the first version of the code.
	Generation llms.Model
	// Reflection critiques the rendered chart. Its provider decides how the
	// image is attached.
	Reflection *provider.Model

	Executor executor.Executor

	// OutputDir receives <ImageBasename>_v1.png and _v2.png. Defaults to ".".
	OutputDir string
	// ImageBasename defaults to "chart".
	ImageBasename string

	// SampleSize rows of the dataset are reported before generation. Defaults to 5.
	SampleSize int
	Rand       *rand.Rand

	Reporter display.Reporter
	Store    store.RunStore
	Metrics  *metrics.Collector
}

// ChartArtifacts holds everything a chart run produced.
type ChartArtifacts struct {
	RunID    string
	CodeV1   string
	ChartV1  string
	Feedback string
	CodeV2   string
	ChartV2  string
}

type chartState struct {
	Frame     *dataset.Frame
	CSVPath   string
	Artifacts ChartArtifacts
}

func (c *ChartWorkflowConfig) validate() error {
	switch {
	case c.DatasetPath == "":
		return errors.New("dataset path is required")
	case c.Instruction == "":
		return errors.New("instruction is required")
	case c.Generation == nil:
		return errors.New("generation model is required")
	case c.Reflection == nil:
		return errors.New("reflection model is required")
	case c.Executor == nil:
		return errors.New("executor is required")
	}
	return nil
}

// ChartPaths returns the absolute output paths of both chart versions.
func ChartPaths(outputDir, basename string) (string, string, error) {
	if outputDir == "" {
		outputDir = "."
	}
	if basename == "" {
		basename = "chart"
	}
	dir, err := filepath.Abs(outputDir)
	if err != nil {
		return "", "", fmt.Errorf("failed to resolve output dir: %w", err)
	}
	return filepath.Join(dir, basename+"_v1.png"), filepath.Join(dir, basename+"_v2.png"), nil
}

// RunChartWorkflow loads the dataset, generates chart code, executes it,
// reflects on the rendered image, and executes the refined code.
func RunChartWorkflow(ctx context.Context, cfg ChartWorkflowConfig) (*ChartArtifacts, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Reporter == nil {
		cfg.Reporter = display.Discard
	}
	if cfg.SampleSize <= 0 {
		cfg.SampleSize = 5
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	outV1, outV2, err := ChartPaths(cfg.OutputDir, cfg.ImageBasename)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(outV1), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	var run *store.Run
	if cfg.Store != nil {
		run = store.NewRun(WorkflowChart, cfg.Instruction)
	}

	runnable, err := buildChartGraph(cfg, outV1, outV2)
	if err != nil {
		return nil, err
	}

	final, runErr := runnable.Invoke(ctx, chartState{})
	if final.CSVPath != "" {
		os.Remove(final.CSVPath)
	}

	arts := final.Artifacts
	if run != nil {
		arts.RunID = run.ID
		recordChart(run, arts)
	}
	if err := saveRun(ctx, cfg.Store, run, runErr); err != nil && runErr == nil {
		return &arts, err
	}
	if runErr != nil {
		return &arts, runErr
	}
	return &arts, nil
}

func recordChart(run *store.Run, a ChartArtifacts) {
	for name, v := range map[string]string{
		"code_v1":  a.CodeV1,
		"chart_v1": a.ChartV1,
		"feedback": a.Feedback,
		"code_v2":  a.CodeV2,
		"chart_v2": a.ChartV2,
	} {
		if v != "" {
			run.Set(name, v)
		}
	}
}

func buildChartGraph(cfg ChartWorkflowConfig, outV1, outV2 string) (*graph.StateRunnable[chartState], error) {
	g := graph.NewStateGraph[chartState]()
	g.AddListener(stepListener[chartState](WorkflowChart, cfg.Metrics))

	g.AddNode("load", "Load and prepare the dataset", func(ctx context.Context, s chartState) (chartState, error) {
		frame, err := dataset.LoadCoffeeSales(cfg.DatasetPath)
		if err != nil {
			return s, err
		}
		f, err := os.CreateTemp("", "agentpatterns-*.csv")
		if err != nil {
			return s, fmt.Errorf("failed to create dataset file: %w", err)
		}
		werr := frame.WriteCSV(f)
		if cerr := f.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			os.Remove(f.Name())
			return s, fmt.Errorf("failed to write dataset file: %w", werr)
		}
		s.Frame = frame
		s.CSVPath = f.Name()

		cfg.Reporter.Section("Random Sample of Dataset", frame.Sample(cfg.SampleSize, cfg.Rand).Markdown())
		return s, nil
	})

	g.AddNode("generate", "Generate chart code (V1)", func(ctx context.Context, s chartState) (chartState, error) {
		cfg.Reporter.Section("Step 1: Generating chart code (V1)", "")
		cfg.Metrics.LLMCalled("chart_generate")
		code, err := GenerateChartCode(ctx, cfg.Generation, cfg.Instruction, outV1)
		if err != nil {
			return s, err
		}
		s.Artifacts.CodeV1 = code
		cfg.Reporter.Section("LLM output with first draft code (V1)", display.CodeBlock("python", code))
		return s, nil
	})

	g.AddNode("execute_v1", "Execute chart code (V1)", func(ctx context.Context, s chartState) (chartState, error) {
		cfg.Reporter.Section("Step 2: Executing chart code (V1)", "")
		ran, err := executeChart(ctx, cfg, s.Artifacts.CodeV1, s.CSVPath)
		if err != nil || !ran {
			return s, err
		}
		s.Artifacts.ChartV1 = outV1
		cfg.Reporter.Image("Generated Chart (V1)", outV1)
		return s, nil
	})

	g.AddNode("reflect", "Reflect on the V1 chart and regenerate code", func(ctx context.Context, s chartState) (chartState, error) {
		cfg.Reporter.Section("Step 3: Reflecting on V1 (image + code) and generating improvements", "")
		cfg.Metrics.LLMCalled("chart_reflect")
		feedback, code, err := ReflectOnImageAndRegenerate(ctx, cfg.Reflection, outV1, cfg.Instruction, outV2, s.Artifacts.CodeV1)
		if err != nil {
			return s, err
		}
		s.Artifacts.Feedback = feedback
		s.Artifacts.CodeV2 = code
		cfg.Reporter.Section("Reflection feedback on V1", feedback)
		cfg.Reporter.Section("LLM output with revised code (V2)", display.CodeBlock("python", code))
		return s, nil
	})

	g.AddNode("execute_v2", "Execute refined chart code (V2)", func(ctx context.Context, s chartState) (chartState, error) {
		cfg.Reporter.Section("Step 4: Executing refined chart code (V2)", "")
		ran, err := executeChart(ctx, cfg, s.Artifacts.CodeV2, s.CSVPath)
		if err != nil || !ran {
			return s, err
		}
		s.Artifacts.ChartV2 = outV2
		cfg.Reporter.Image("Regenerated Chart (V2)", outV2)
		return s, nil
	})

	g.SetEntryPoint("load")
	g.AddEdge("load", "generate")
	g.AddEdge("generate", "execute_v1")
	g.AddEdge("execute_v1", "reflect")
	g.AddEdge("reflect", "execute_v2")
	g.AddEdge("execute_v2", graph.END)

	return g.Compile()
}

// executeChart runs the tagged code in response and reports whether it ran
// cleanly. A response without a code block is skipped with a warning.
func executeChart(ctx context.Context, cfg ChartWorkflowConfig, response, csvPath string) (bool, error) {
	code := parse.ExtractCode(response)
	if code == "" {
		log.Warn("chart workflow: no <execute_python> block found, skipping execution")
		return false, nil
	}
	out, err := cfg.Executor.Execute(ctx, code, csvPath)
	if out != "" {
		cfg.Reporter.Section("Execution output", display.CodeBlock("", out))
	}
	return err == nil, err
}
