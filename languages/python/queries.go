package python

const highlightsQuery = `
(comment) @comments

(string) @strings
(escape_sequence) @characters

(integer) @numbers
(float) @numbers

[(true) (false) (none)] @values

(decorator) @attributes

(class_definition name: (identifier) @types)
(type (identifier) @types)

(function_definition name: (identifier) @commands)
(call function: (identifier) @commands)
(call function: (attribute attribute: (identifier) @commands))

[
  "and" "as" "assert" "async" "await" "break" "class" "continue" "def" "del"
  "elif" "else" "except" "finally" "for" "from" "global" "if" "import" "in"
  "is" "lambda" "nonlocal" "not" "or" "pass" "raise" "return" "try" "while"
  "with" "yield"
] @keywords

(attribute attribute: (identifier) @variables.member)
(identifier) @variables
`

const outlineQuery = `
(class_definition name: (identifier) @name) @container
(function_definition name: (identifier) @name) @function
(decorator) @attribute
(module
  (expression_statement
    (assignment left: (identifier) @name) @value)
  (#not-match? @name "^_"))
(comment) @mark
`
