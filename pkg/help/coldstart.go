package help

const ColdstartYAML = `# chat-extract Quick Start

input_types:
  txt: "One document per line, id = line index (default choice for plain corpora)"
  json: "Array of objects; --keydoc selects the text field, --keyid an integer id field"
  html: "One page; --selector splits it into documents, otherwise readability distills it"

commands:
  plain_text: |
    chat-extract extract --input-type txt pages.txt schema.json results.json

  json_corpus: |
    chat-extract extract --input-type json --keydoc body --keyid id posts.json schema.json results.json

  html_page: |
    chat-extract extract --input-type html --selector "div.entry" page.html schema.json results.json

  resume_after_crash: |
    chat-extract extract --input-type txt --continue-last pages.txt schema.json results.json

  inspect_runs: |
    chat-extract db runs
    chat-extract db run 3

notes:
  - "The bridge daemon must be running and logged in; pass --headless to skip the login prompt"
  - "results.json is rewritten after every document and doubles as the resume checkpoint"
  - "A session abort exits non-zero on purpose: restart with --continue-last"
`
