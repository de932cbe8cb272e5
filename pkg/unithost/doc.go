// SPDX-License-Identifier: MPL-2.0

// Package unithost brings code units into the running process.
//
// Interpreter evaluates each unit's Go source in a shared yaegi interpreter,
// so a unit can use the declarations of units loaded before it. Func adapts
// a plain function for hosts that load units some other way.
package unithost
