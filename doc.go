// Package ltest is the entry point of the linearizability stress-testing
// framework.
//
// A target registers its methods (usually from init functions) with
// [RegisterMethod], provides a [Spec] pairing the system under test with
// its sequential reference semantics, and calls [Run]. The engine executes
// the registered operations as cooperatively scheduled tasks, explores
// interleavings under the selected strategy, checks every observed history
// for linearizability, and shrinks the first counterexample it finds to a
// minimal witness.
//
//	func main() {
//		os.Exit(ltest.Run(ltest.Spec{
//			Target:  &Register{},
//			Methods: registerMethods,
//			Initial: &registerState{},
//		}))
//	}
package ltest
