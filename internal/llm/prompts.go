package llm

const planPrompt = `You are a research planner. Choose which agents should investigate the query below and write one short task per agent.

Available agents:
%s

Query: %s

Pick only agents that add value for this query. Respond ONLY with JSON, no markdown:
{"slots":[{"agent_id":"...","task":"..."}]}`

const retryPrompt = `These research agents failed on their tasks. Write one SIMPLER replacement task per agent: shorter, more literal, fewer qualifiers.

Query: %s

Failures:
%s

Respond ONLY with a JSON object mapping agent id to new task, no markdown:
{"agent-id":"new task"}`

const synthesisPrompt = `You are a research writer. Using ONLY the agent findings below, write a concise answer to the query. Note explicitly when a research angle produced no data. Do not invent sources.

Query: %s

Findings:
%s

Respond with plain prose, no headings.`

const decomposePrompt = `You are a research analyst. Decompose the hypothesis below into atomic, independently verifiable claims. Each claim must be one complete statement that evidence could support or refute on its own.

Hypothesis: %s

Use as few claims as possible; a simple hypothesis is itself one claim. Respond ONLY with a JSON object, no markdown:
{"claims":["..."]}`

const conflictPrompt = `Analyze the following evidence about the hypothesis: "%s"

SUPPORTING:
%s

OPPOSING:
%s

The evidence contains both supporting and refuting sources. Explain the specific contradiction, which side has more reliable sources, and whether the disagreement could come from different definitions, timeframes, or scopes.

Respond with a clear, balanced resolution statement of 2-4 sentences.`
