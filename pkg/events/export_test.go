package events

// Encode exposes message encoding to the external test package.
var Encode = encode
