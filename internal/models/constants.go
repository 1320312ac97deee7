package models

const (
	// metadata keys stored with every chunk in the vector index
	MetaSourceFile = "source_file"
	MetaRowIndex   = "row_index"
	MetaPart       = "part"
	MetaOrdinal    = "ordinal"

	SourcePrefixFormat = "Source: %s\n"
	ContextSeparator   = "\n\n---\n\n"
)

// Fixed answers and status messages. These strings are returned verbatim
// to the end user, do not reword them.
const (
	NotInDocumentsAnswer = "This information is not in the uploaded documents. Please contact HR."
	EmptyIndexAnswer     = "Knowledge base empty. Upload documents first."
	NoResultsAnswer      = "I couldn't find information on that in our records."
	EmptyQuestionAnswer  = "Please ask a question!"

	StatusDataDirCreated = "Data folder created. Please add CSV files."
	StatusNoDocuments    = "No CSV files found to index."
	StatusIndexedFormat  = "Success! Indexed %d rows."
)

var (
	PromptTemplate = `You are the HR assistant for {{.organization}}. You answer employee questions using only the HR records below.

RULES:
1. Answer only from the CONTEXT section. Do not use outside knowledge.
2. Never invent policies, amounts, names or dates.
3. If the answer is not in the context, reply with exactly this sentence and nothing else: "{{.fallback}}"
4. When a policy has several rules or steps, list them as bullet points.
5. Keep a professional tone and name the source file of the facts you use.

CONTEXT:
{{.context}}

QUESTION: {{.question}}

ANSWER:`
)
