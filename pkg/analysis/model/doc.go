// Package model provides the data structures shared by the analysis package and its collaborators.
// It defines the sample sequence, the analysis result with its origin and classification,
// and the hook interface used to observe the analysis stages.
package model
