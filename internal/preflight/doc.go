// Package preflight provides readiness checks for the directories and
// external tools esdemedia depends on.
//
// These checks run in two contexts:
//   - The root command calls CheckInputDir before a run starts. A failing
//     input check aborts the run with exit status 1.
//   - The CLI "esdemedia status" command uses RunAll and CheckSystemDeps to
//     display directory access and tool availability.
//
// Missing encoder tools never fail a run; every converter has a fallback.
package preflight
