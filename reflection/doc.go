// Package reflection implements generate, execute, reflect and regenerate
// pipelines for two kinds of artifact: matplotlib chart code and SQLite
// queries.
//
// Each pipeline is a compiled graph.StateGraph whose nodes run strictly in
// order. A first model produces version one of the artifact, the artifact is
// executed, a second model critiques the result and proposes version two,
// and version two is executed. Execution failures are returned, never
// retried.
//
// # Chart workflow
//
//	arts, err := reflection.RunChartWorkflow(ctx, reflection.ChartWorkflowConfig{
//		DatasetPath:   "coffee_sales.csv",
//		Instruction:   "Compare Q1 coffee sales in 2024 and 2025.",
//		Generation:    gen,
//		Reflection:    critic,
//		Executor:      executor.NewPythonExecutor("python3"),
//		ImageBasename: "drink_sales",
//	})
//
// The generated code is expected inside <execute_python> tags. The critic
// receives the rendered chart as an image and must answer with a JSON
// feedback line followed by the refined code.
//
// # SQL workflow
//
//	arts, err := reflection.RunSQLWorkflow(ctx, reflection.SQLWorkflowConfig{
//		DBPath:     "products.db",
//		Question:   "Which color of product has the highest total sales?",
//		Generation: gen,
//		Evaluation: critic,
//	})
//
// The critic sees the question, the first query, its output as a Markdown
// table and the schema, and answers with {"feedback": ..., "refined_sql": ...}.
package reflection
