package ir

// Version constants for the language and the toolchain.
const (
	// LanguageVersion is the yBrainfuck dialect this interpreter implements.
	LanguageVersion = "2.0.1"

	// EngineVersion is the ybf toolchain version.
	EngineVersion = "0.1.0"
)
