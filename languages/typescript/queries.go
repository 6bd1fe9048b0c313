package typescript

const commonHighlights = `
(comment) @comments

(string) @strings
(template_string) @strings
(regex) @strings.regex
(escape_sequence) @characters

(number) @numbers

[(true) (false) (null) (undefined)] @values

(class_declaration name: (_) @types)
(new_expression constructor: (identifier) @types)

(function_declaration name: (identifier) @commands)
(method_definition name: (property_identifier) @commands)
(call_expression function: (identifier) @commands)
(call_expression function: (member_expression property: (property_identifier) @commands))

[
  "as" "async" "await" "break" "case" "catch" "class" "const" "continue"
  "debugger" "default" "delete" "do" "else" "export" "extends" "finally"
  "for" "from" "function" "get" "if" "import" "in" "instanceof" "let" "new"
  "of" "return" "set" "static" "switch" "throw" "try" "typeof" "var" "void"
  "while" "with" "yield"
] @keywords
`

const commonTail = `
(this) @variables.builtin
(property_identifier) @variables.member
(identifier) @variables
`

const typeHighlights = `
(type_identifier) @types
(predefined_type) @types
(decorator) @attributes

[
  "abstract" "declare" "enum" "implements" "interface" "keyof" "namespace"
  "private" "protected" "public" "readonly" "type"
] @keywords
`

const commonOutline = `
(class_declaration name: (_) @name) @container
(function_declaration name: (identifier) @name) @function
(generator_function_declaration name: (identifier) @name) @function
(method_definition name: (_) @name) @function
(program (lexical_declaration (variable_declarator name: (identifier) @name) @value))
(program (variable_declaration (variable_declarator name: (identifier) @name) @value))
(program (export_statement (lexical_declaration (variable_declarator name: (identifier) @name) @value)))
(comment) @mark
`

const typeOutline = `
(abstract_class_declaration name: (type_identifier) @name) @container
(interface_declaration name: (type_identifier) @name) @container
(enum_declaration name: (identifier) @name) @container
(type_alias_declaration name: (type_identifier) @name) @value
(public_field_definition name: (property_identifier) @name) @value
(property_signature name: (property_identifier) @name) @value
(method_signature name: (property_identifier) @name) @function
(decorator) @attribute
`

// Type annotations come before the identifier fallbacks so that earlier
// patterns win ties on identical nodes.
var (
	scriptHighlights = commonHighlights + commonTail
	typedHighlights  = commonHighlights + typeHighlights + commonTail
	scriptOutline    = commonOutline
	typedOutline     = commonOutline + typeOutline
)
