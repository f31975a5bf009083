// Package textutil provides token-based title similarity used to flag
// likely duplicate work items at ingestion time.
//
// Titles are lowercased, split on non-alphanumeric runs, and compared as
// term-frequency vectors with cosine similarity. Tokens shorter than 3
// characters are dropped so filler words do not inflate scores.
package textutil
