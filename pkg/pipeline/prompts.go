package pipeline

import (
	"fmt"
)

// FallbackAnswer is returned when a run ends without an answer.
const FallbackAnswer = "I'm sorry, I encountered an error and couldn't process your request."

// Temperature used for every LLM call so repeated runs stay stable.
const Temperature = 0.0

const sqlSystemMessage = "You are an expert PostgreSQL developer. " +
	"You answer with exactly one SQL statement and nothing else."

const answerSystemMessage = "You are a helpful data assistant. " +
	"You explain database results and problems in plain language for non-technical users."

// BuildSQLPrompt asks for one PostgreSQL statement answering the question.
// Schema and question are embedded verbatim.
func BuildSQLPrompt(schema, question string) string {
	return fmt.Sprintf(`Based on the database schema below, write a single, syntactically correct PostgreSQL query
to answer the following question. Do not explain the query, just return the SQL.

Schema:
%s

Question:
%s

SQL Query:`, schema, question)
}

// BuildAnswerPrompt asks for a concise answer from the executed query and its result.
func BuildAnswerPrompt(question, sqlQuery, sqlResult string) string {
	return fmt.Sprintf(`The user asked: "%s"
We ran the SQL query: "%s"
And got this result: "%s"
Please provide a concise, natural language answer to the user based on this information.`,
		question, sqlQuery, sqlResult)
}

// BuildErrorPrompt asks for a friendly explanation of a failed run.
func BuildErrorPrompt(question, errMsg string) string {
	return fmt.Sprintf(`An error occurred trying to answer the question: "%s"
The error was:
%s
Please explain this error to the user in a helpful, friendly, non-technical way.`,
		question, errMsg)
}
