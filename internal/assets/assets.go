// Package assets holds the vocabulary compiled into the binary.
package assets

import _ "embed"

// VocabularyName is the file name of the embedded vocabulary; its extension
// selects the decoder.
const VocabularyName = "valid-words.json"

// Vocabulary is the default word list: a JSON array of strings.
//
//go:embed valid-words.json
var Vocabulary []byte
