package reflection

import "fmt"

const dataFrameColumns = `- date (M/D/YY)
- time (HH:MM)
- cash_type (card or cash)
- card (string)
- price (number)
- coffee_name (string)
- quarter (1-4)
- month (1-12)
- year (YYYY)`

func chartGenerationPrompt(instruction, outPath string) string {
	return fmt.Sprintf(`You are a data visualization expert.

Return your answer *strictly* in this format:

<execute_python>
# valid python code here
</execute_python>

Do not add explanations, only the tags and the code.

The code should create a visualization from a DataFrame 'df' with these columns:
%s

User instruction: %s

Requirements for the code:
1. Assume the DataFrame is already loaded as 'df'.
2. Use matplotlib for plotting.
3. Add clear title, axis labels, and legend if needed.
4. Save the figure as '%s' with dpi=300.
5. Do not call plt.show().
6. Close all plots with plt.close().
7. Add all necessary import python statements

Return ONLY the code wrapped in <execute_python> tags.`, dataFrameColumns, instruction, outPath)
}

func chartReflectionPrompt(codeV1, outPathV2, instruction string) string {
	return fmt.Sprintf(`You are a data visualization expert.
Your task: critique the attached chart and the original code against the given instruction,
then return improved matplotlib code.

Original code (for context):
%s

OUTPUT FORMAT (STRICT!):
1) First line: a valid JSON object with ONLY the "feedback" field.
Example: {"feedback": "The legend is unclear and the axis labels overlap."}

2) After a newline, output ONLY the refined Python code wrapped in:
<execute_python>
...
</execute_python>

3) Import all necessary libraries in the code. Don't assume any imports from the original code.

HARD CONSTRAINTS:
- Do NOT include Markdown, backticks, or any extra prose outside the two parts above.
- Use pandas/matplotlib only (no seaborn).
- Assume df already exists; do not read from files.
- Save to '%s' with dpi=300.
- Always call plt.close() at the end (no plt.show()).
- Include all necessary import statements.

Schema (columns available in df):
%s

Instruction:
%s`, codeV1, outPathV2, dataFrameColumns, instruction)
}

func sqlGenerationPrompt(question, schema string) string {
	return fmt.Sprintf(`You are a SQL assistant. Given the schema and the user's question, write a SQL query for SQLite.

Schema:
%s

User question:
%s

Respond with the SQL only.`, schema, question)
}

func sqlRefinePrompt(question, query, schema string) string {
	return fmt.Sprintf(`You are a SQL reviewer and refiner.

User asked:
%s

Original SQL:
%s

Table Schema:
%s

Step 1: Briefly evaluate if the SQL OUTPUT fully answers the user's question.
Step 2: If improvement is needed, provide a refined SQL query for SQLite.
If the original SQL is already correct, return it unchanged.

Return STRICT JSON with two fields:
{
  "feedback": "<1-3 sentences explaining the gap or confirming correctness>",
  "refined_sql": "<final SQL to run>"
}`, question, query, schema)
}

func sqlRefineWithResultPrompt(question, query, output, schema string) string {
	return fmt.Sprintf(`You are a SQL reviewer and refiner.

User asked:
%s

Original SQL:
%s

SQL Output:
%s

Table Schema:
%s

Step 1: Briefly evaluate if the SQL output answers the user's question.
Step 2: If the SQL could be improved, provide a refined SQL query.
If the original SQL is already correct, return it unchanged.

Return a strict JSON object with two fields:
- "feedback": brief evaluation and suggestions
- "refined_sql": the final SQL to run`, question, query, output, schema)
}
