package kernel

import "fmt"

// PassthroughFunc implements spec §4.6.4: input and output 1-D lengths
// must be equal; data and QC are copied slice-for-slice. No metrics are
// emitted.
func PassthroughFunc(c *Call) error {
	if len(c.InputData) != len(c.OutputData) {
		return fmt.Errorf("kernel: passthrough requires equal lengths, got %d and %d",
			len(c.InputData), len(c.OutputData))
	}
	copy(c.OutputData, c.InputData)
	copy(c.OutputQC, c.InputQC)
	return nil
}
