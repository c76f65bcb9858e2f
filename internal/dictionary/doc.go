// Package dictionary loads pronunciation dictionaries and checks transcript
// vocabulary against them before any aligner runs. The gate exists because a
// long alignment batch that dies on an out-of-vocabulary word forty minutes
// in is far more expensive than the same finding up front.
package dictionary
