//go:build iopoll_debug

package iopoll

// defaultAssociationChecks enables the [IoSource] selector association
// checks, when built with the iopoll_debug tag.
const defaultAssociationChecks = true
