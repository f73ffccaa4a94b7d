package envbase

// Version is the library version, reported by the CLI's -version flag.
const Version = "1.0.0"
