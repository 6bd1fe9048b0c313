package rust

const highlightsQuery = `
(line_comment) @comments
(block_comment) @comments

(string_literal) @strings
(raw_string_literal) @strings
(char_literal) @characters
(escape_sequence) @characters

(integer_literal) @numbers
(float_literal) @numbers

(boolean_literal) @values

(attribute_item) @attributes
(inner_attribute_item) @attributes

(type_identifier) @types
(primitive_type) @types

(function_item name: (identifier) @commands)
(call_expression function: (identifier) @commands)
(call_expression function: (field_expression field: (field_identifier) @commands))
(call_expression function: (scoped_identifier name: (identifier) @commands))
(macro_invocation macro: (identifier) @commands)

[
  "as" "async" "await" "break" "const" "continue" "dyn" "else" "enum"
  "extern" "fn" "for" "if" "impl" "in" "let" "loop" "match" "mod" "move"
  "pub" "ref" "return" "static" "struct" "trait" "type" "unsafe" "use"
  "where" "while"
] @keywords
(mutable_specifier) @keywords

(self) @variables.builtin
(field_identifier) @variables.member
(identifier) @variables
`

const outlineQuery = `
(struct_item name: (type_identifier) @name) @container
(enum_item name: (type_identifier) @name) @container
(trait_item name: (type_identifier) @name) @container
(impl_item) @container
(mod_item name: (identifier) @name) @container
(function_item name: (identifier) @name) @function
(function_signature_item name: (identifier) @name) @function
(const_item name: (identifier) @name) @value
(static_item name: (identifier) @name) @value
(type_item name: (type_identifier) @name) @value
(field_declaration name: (field_identifier) @name) @value
(enum_variant name: (identifier) @name) @value
(attribute_item) @attribute
(line_comment) @mark
(block_comment) @mark
`
