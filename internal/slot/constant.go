package slot

import "time"

const DefaultProposalTimeout = 5 * time.Second

const proposalSchema = `{
  "type": "object",
  "required": ["start", "end"],
  "properties": {
    "start": {"type": "string", "pattern": "^([01]?[0-9]|2[0-3]):[0-5][0-9]$"},
    "end":   {"type": "string", "pattern": "^(([01]?[0-9]|2[0-3]):[0-5][0-9]|24:00)$"}
  }
}`

const proposalInstruction = `You place one block of time on a calendar day.
Reply with a single JSON object {"start":"HH:MM","end":"HH:MM"} and nothing else.`

const proposalPromptTemplate = `Find a %d minute block between %s and %s.
Busy ranges: %s.
Keep %d minutes clear before and after every busy range.
Prefer the earliest block that fits.`
