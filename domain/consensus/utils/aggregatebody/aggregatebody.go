// Package aggregatebody implements the aggregate transaction body: the
// ordered collections of inputs, outputs and kernels that make up a
// transaction or a block, together with the consensus checks that operate on
// a body in isolation. Checks that need chain state live in the body
// validator process instead.
package aggregatebody

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/tari-project/tari-sub014/domain/consensus/model/externalapi"
	"github.com/tari-project/tari-sub014/domain/consensus/utils/consensushashing"
)

// AggregateBody is the sum of inputs, outputs and kernels of one or more
// transactions. A body is canonically sorted when inputs ascend by spent
// output hash, outputs by commitment and kernels by excess signature. The
// sorted flag caches that property: it is set by Sort, trusted by
// NewSortedUnchecked, and cleared by the mutators, and it switches the
// duplicate checks from quadratic to linear.
type AggregateBody struct {
	inputs  []*externalapi.DomainTransactionInput
	outputs []*externalapi.DomainTransactionOutput
	kernels []*externalapi.DomainTransactionKernel
	sorted  bool
}

// New builds a body from the given parts. The body is considered unsorted
// regardless of the order the parts arrive in.
func New(inputs []*externalapi.DomainTransactionInput, outputs []*externalapi.DomainTransactionOutput,
	kernels []*externalapi.DomainTransactionKernel) *AggregateBody {

	return &AggregateBody{inputs: inputs, outputs: outputs, kernels: kernels}
}

// NewEmpty builds a body with no parts.
func NewEmpty() *AggregateBody {
	return &AggregateBody{}
}

// NewSortedUnchecked builds a body from parts the caller attests are already
// canonically sorted. Nothing is verified: a caller passing unsorted parts
// breaks the linear duplicate checks and the canonical wire order.
func NewSortedUnchecked(inputs []*externalapi.DomainTransactionInput, outputs []*externalapi.DomainTransactionOutput,
	kernels []*externalapi.DomainTransactionKernel) *AggregateBody {

	return &AggregateBody{inputs: inputs, outputs: outputs, kernels: kernels, sorted: true}
}

// Inputs returns the body's inputs. The returned slice is the body's own and
// must not be mutated.
func (body *AggregateBody) Inputs() []*externalapi.DomainTransactionInput {
	return body.inputs
}

// Outputs returns the body's outputs. The returned slice is the body's own
// and must not be mutated.
func (body *AggregateBody) Outputs() []*externalapi.DomainTransactionOutput {
	return body.outputs
}

// Kernels returns the body's kernels. The returned slice is the body's own
// and must not be mutated.
func (body *AggregateBody) Kernels() []*externalapi.DomainTransactionKernel {
	return body.kernels
}

// IsSorted returns whether the body is marked canonically sorted.
func (body *AggregateBody) IsSorted() bool {
	return body.sorted
}

// AddInput appends an input and clears the sorted flag.
func (body *AggregateBody) AddInput(input *externalapi.DomainTransactionInput) {
	body.inputs = append(body.inputs, input)
	body.sorted = false
}

// AddInputs appends inputs and clears the sorted flag.
func (body *AggregateBody) AddInputs(inputs ...*externalapi.DomainTransactionInput) {
	body.inputs = append(body.inputs, inputs...)
	body.sorted = false
}

// AddOutput appends an output and clears the sorted flag.
func (body *AggregateBody) AddOutput(output *externalapi.DomainTransactionOutput) {
	body.outputs = append(body.outputs, output)
	body.sorted = false
}

// AddOutputs appends outputs and clears the sorted flag.
func (body *AggregateBody) AddOutputs(outputs ...*externalapi.DomainTransactionOutput) {
	body.outputs = append(body.outputs, outputs...)
	body.sorted = false
}

// AddKernel appends a single kernel.
//
// Note: unlike AddKernels and the input and output mutators, this leaves the
// sorted flag untouched, so a body marked sorted stays marked even though the
// appended kernel may break the order. Deployed nodes behave exactly this
// way, which makes changing it a consensus change; possibly a latent bug.
func (body *AggregateBody) AddKernel(kernel *externalapi.DomainTransactionKernel) {
	body.kernels = append(body.kernels, kernel)
}

// AddKernels appends kernels and clears the sorted flag.
func (body *AggregateBody) AddKernels(kernels ...*externalapi.DomainTransactionKernel) {
	body.kernels = append(body.kernels, kernels...)
	body.sorted = false
}

// Sort sorts the inputs, outputs and kernels into canonical order and sets
// the sorted flag. It is a no-op on a body already marked sorted.
func (body *AggregateBody) Sort() {
	if body.sorted {
		return
	}
	sort.Slice(body.inputs, func(i, j int) bool {
		return compareInputs(body.inputs[i], body.inputs[j]) < 0
	})
	sort.Slice(body.outputs, func(i, j int) bool {
		return body.outputs[i].Cmp(body.outputs[j]) < 0
	})
	sort.Slice(body.kernels, func(i, j int) bool {
		return body.kernels[i].Cmp(body.kernels[j]) < 0
	})
	body.sorted = true
}

// compareInputs orders inputs by spent output hash, script signature and
// input data. Two inputs comparing equal spend the same output with the same
// witness, whatever form each is in.
func compareInputs(a, b *externalapi.DomainTransactionInput) int {
	if cmp := consensushashing.InputOutputHash(a).Cmp(consensushashing.InputOutputHash(b)); cmp != 0 {
		return cmp
	}
	if cmp := a.ScriptSignature.Cmp(&b.ScriptSignature); cmp != 0 {
		return cmp
	}
	return bytes.Compare(a.InputData, b.InputData)
}

// ContainsDuplicatedInputs returns whether two inputs spend the same output
// with the same witness. On a sorted body only adjacent pairs are compared;
// otherwise every pair is. Both paths agree for the same multiset of inputs.
func (body *AggregateBody) ContainsDuplicatedInputs() bool {
	if body.sorted {
		for i := 1; i < len(body.inputs); i++ {
			if compareInputs(body.inputs[i-1], body.inputs[i]) == 0 {
				return true
			}
		}
		return false
	}
	for i := 0; i < len(body.inputs); i++ {
		for j := i + 1; j < len(body.inputs); j++ {
			if compareInputs(body.inputs[i], body.inputs[j]) == 0 {
				return true
			}
		}
	}
	return false
}

// ContainsDuplicatedOutputs returns whether two outputs carry the same
// commitment. On a sorted body only adjacent pairs are compared; otherwise
// every pair is. Both paths agree for the same multiset of outputs.
func (body *AggregateBody) ContainsDuplicatedOutputs() bool {
	if body.sorted {
		for i := 1; i < len(body.outputs); i++ {
			if body.outputs[i-1].Cmp(body.outputs[i]) == 0 {
				return true
			}
		}
		return false
	}
	for i := 0; i < len(body.outputs); i++ {
		for j := i + 1; j < len(body.outputs); j++ {
			if body.outputs[i].Cmp(body.outputs[j]) == 0 {
				return true
			}
		}
	}
	return false
}

// ToCompact returns a copy of the body with every input downgraded to the
// compact form, referencing its spent output by hash only. Outputs and
// kernels are shared with the original body; the sorted flag carries over.
func (body *AggregateBody) ToCompact() *AggregateBody {
	compactInputs := make([]*externalapi.DomainTransactionInput, len(body.inputs))
	for i, input := range body.inputs {
		compactInputs[i] = &externalapi.DomainTransactionInput{
			Version:         input.Version,
			SpentOutput:     externalapi.NewSpentOutputFromHash(consensushashing.InputOutputHash(input)),
			InputData:       input.InputData,
			ScriptSignature: input.ScriptSignature,
		}
	}
	return &AggregateBody{
		inputs:  compactInputs,
		outputs: body.outputs,
		kernels: body.kernels,
		sorted:  body.sorted,
	}
}

// Dissolve consumes the body and returns its three sequences. The body must
// not be used afterwards.
func (body *AggregateBody) Dissolve() ([]*externalapi.DomainTransactionInput,
	[]*externalapi.DomainTransactionOutput, []*externalapi.DomainTransactionKernel) {

	inputs, outputs, kernels := body.inputs, body.outputs, body.kernels
	body.inputs, body.outputs, body.kernels = nil, nil, nil
	body.sorted = false
	return inputs, outputs, kernels
}

func (body *AggregateBody) String() string {
	return fmt.Sprintf("body with %d inputs, %d outputs, %d kernels (sorted: %t)",
		len(body.inputs), len(body.outputs), len(body.kernels), body.sorted)
}
