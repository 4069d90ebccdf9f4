package http

// ErrorStatus exposes errorStatus for testing
var ErrorStatus = errorStatus

// WriteError exposes writeError for testing
var WriteError = writeError
