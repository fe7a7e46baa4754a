package renderer

import "github.com/Carmen-Shannon/oxy-cinematic/engine/postfx"

// Post pipeline keys. A composite followed by depth of field writes the LDR target and
// needs a pipeline for that format.
const (
	pipelineCompositeLDR = "composite-ldr"
)

// postStep is one fullscreen pass with its inputs and output resolved to targets.
type postStep struct {
	pass   postfx.Pass
	key    string // pipeline key
	source TargetID
	aux    TargetID
	dest   TargetID
}

// planPost orders the requested passes and routes them through the targets:
//
//	bright:    hdr     -> bloom-a
//	blur-h:    bloom-a -> bloom-b
//	blur-v:    bloom-b -> bloom-a
//	composite: hdr + bloom-a -> surface, or ldr when depth of field follows
//	dof:       ldr + hdr     -> surface
//
// Blur passes are dropped without a bright pass and the composite is always present, so the
// last step always writes the surface.
//
// Parameters:
//   - passes: the compositor's passes
//
// Returns:
//   - []postStep: the steps in execution order
func planPost(passes []postfx.Pass) []postStep {
	var bright, blurH, blurV, dof bool
	for _, p := range passes {
		switch p {
		case postfx.PassBrightExtract:
			bright = true
		case postfx.PassBlurHorizontal:
			blurH = true
		case postfx.PassBlurVertical:
			blurV = true
		case postfx.PassDepthOfField:
			dof = true
		}
	}

	steps := make([]postStep, 0, 5)
	if bright {
		steps = append(steps, postStep{pass: postfx.PassBrightExtract, key: ShaderBright, source: TargetHDR, aux: TargetHDR, dest: TargetBloomA})
		if blurH {
			steps = append(steps, postStep{pass: postfx.PassBlurHorizontal, key: ShaderBlurH, source: TargetBloomA, aux: TargetBloomA, dest: TargetBloomB})
		}
		if blurV {
			// Without a horizontal pass the bright result is still in bloom-a.
			src := TargetBloomB
			if !blurH {
				src = TargetBloomA
			}
			dst := TargetBloomA
			if !blurH {
				dst = TargetBloomB
			}
			steps = append(steps, postStep{pass: postfx.PassBlurVertical, key: ShaderBlurV, source: src, aux: src, dest: dst})
		}
	}

	bloom := TargetBloomA
	if bright && blurV && !blurH {
		bloom = TargetBloomB
	}
	composite := postStep{pass: postfx.PassComposite, key: ShaderComposite, source: TargetHDR, aux: bloom, dest: TargetSurface}
	if dof {
		composite.key = pipelineCompositeLDR
		composite.dest = TargetLDR
	}
	steps = append(steps, composite)
	if dof {
		steps = append(steps, postStep{pass: postfx.PassDepthOfField, key: ShaderDOF, source: TargetLDR, aux: TargetHDR, dest: TargetSurface})
	}
	return steps
}

// hasBloom reports whether the plan produces a bloom texture for the composite to add.
func hasBloom(steps []postStep) bool {
	return len(steps) > 0 && steps[0].pass == postfx.PassBrightExtract
}
