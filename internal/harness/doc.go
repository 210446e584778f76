// Package harness runs yBrainfuck programs as conformance scenarios.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: hello_world
//	description: "Prints Hello World!"
//	program: |
//	  !counter
//	  counter 8+ [ ... ]
//	input: "AB"
//	max_steps: 100000
//	expect:
//	  halt: end
//	  output: "Hello World!\n"
//	  diagnostics: []
//	  error_code: ""
//	  cells:
//	    counter: 0
//	    "3": 72
//	  position: 3
//
// program_file may replace program; it is resolved relative to the
// scenario file. Every expect field is optional except halt.
//
// # Golden Transcripts
//
// A scenario's transcript can also be compared with a golden file holding
// its canonical JSON snapshot. RunWithGolden does this from tests through
// goldie; CompareGolden and UpdateGolden serve the CLI.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/hello.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(ctx, scenario)
//	if !result.Pass {
//	    for _, e := range result.Errors {
//	        log.Println(e)
//	    }
//	}
package harness
