//go:build !iopoll_debug

package iopoll

const defaultAssociationChecks = false
