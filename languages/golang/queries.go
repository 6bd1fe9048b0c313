package golang

const highlightsQuery = `
(comment) @comments

(interpreted_string_literal) @strings
(raw_string_literal) @strings
(rune_literal) @characters
(escape_sequence) @characters

(int_literal) @numbers
(float_literal) @numbers
(imaginary_literal) @numbers

[(true) (false) (nil) (iota)] @values

(type_identifier) @types
(package_identifier) @types.namespace

(function_declaration name: (identifier) @commands)
(method_declaration name: (field_identifier) @commands)
(call_expression function: (identifier) @commands)
(call_expression function: (selector_expression field: (field_identifier) @commands))

[
  "break" "case" "chan" "const" "continue" "default" "defer" "else"
  "fallthrough" "for" "func" "go" "goto" "if" "import" "interface" "map"
  "package" "range" "return" "select" "struct" "switch" "type" "var"
] @keywords

(field_identifier) @variables.member
(identifier) @variables
`

const outlineQuery = `
(function_declaration name: (identifier) @name) @function
(method_declaration name: (field_identifier) @name) @function
(type_spec name: (type_identifier) @name) @container
(field_declaration name: (field_identifier) @name) @value
(source_file (const_declaration (const_spec name: (identifier) @name) @value))
(source_file (var_declaration (var_spec name: (identifier) @name) @value))
(comment) @mark
`
