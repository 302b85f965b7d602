// Package build runs the capsule build pipeline.
//
// Every entry point (the build and watch commands, tests) goes through
// BuildService. A build is a fixed sequence of stages run on one goroutine:
//
//	load_templates → prepare_output → reconcile → load_entries →
//	aggregate → render → static_merge
//
// The first fatal stage error aborts the build and is returned as a
// classified error naming the stage and the artifact at fault. Files written
// before the failure are left in place.
package build
