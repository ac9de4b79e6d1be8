// Command ffcx analyzes expression graphs and generates in-place permutation
// kernels.
//
// Usage:
//
//	ffcx [flags] <command>
//
// Commands:
//   - permute: Emit C code applying a permutation in place
//   - analyze: Report the live nodes of an expression graph
//   - batch: Compile a job file into one header per permutation
//   - config show: Print the effective configuration
//   - doctor: Run health checks on configuration, jobs and graphs
//   - version: Print version information
package main

func main() {
	Execute()
}
