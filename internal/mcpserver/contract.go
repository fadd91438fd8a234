package mcpserver

// DocFormatContract describes the canonical document format that LLM
// consumers should follow when creating or updating documents.
const DocFormatContract = `# carta Document Format Contract

Documents stored in carta SHOULD follow this structure.

## Addressing

- Every document lives in one of two scopes: ` + "`project`" + ` (IDs P001, P002, ...)
  or ` + "`shared`" + ` (IDs S001, S002, ...).
- A document is addressed by its generated ID or by its relative path
  (forward slashes, no leading slash, ` + "`.md`" + ` extension optional in requests).
- A project document with the same path as a shared one overrides it: path
  lookups without an explicit scope resolve to the project copy.
- IDs are minted by the store and never reused. Moving a document retires
  its old ID and mints a new one at the destination.

## Structure

` + "```" + `markdown
---
title: Human-readable title        # OPTIONAL - used in search results
synopsis: One-line summary         # OPTIONAL - shown in listings
tags:                              # OPTIONAL - YAML list; searchable
  - tag-one
---

Body text in standard Markdown.
` + "```" + `

## Rules

1. **Front matter is optional.** A document without a leading ` + "`---`" + ` block is
   all body. Invalid YAML in the block is ignored, never an error.
2. **The synopsis is informational only.** It is extracted for listings but
   never validated.
3. **File paths** use forward slashes; directories are created on demand and
   removed again when their last document is deleted.
4. **Encoding** is UTF-8 with a trailing newline.

## Concurrency

Every read returns the document's content hash. Pass it back as
` + "`base_hash`" + ` when editing (or ` + "`expected_hash`" + ` when deleting) to fail fast
with a conflict instead of clobbering someone else's concurrent change.
Omitting the hash is an explicit last-write-wins choice.

## Example

` + "```" + `markdown
---
title: JWT authentication
synopsis: Why we verify tokens at the edge
tags:
  - auth
---

# JWT authentication

Tokens are verified at the gateway; services trust the forwarded claims.
` + "```" + `
`
