package strata

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TransformTween animates a Transform by applying the change in the tweened
// values since the last Update, so it composes with whatever else is done to
// the same transform. Create one via TweenRotation, TweenTranslation or
// TweenScale and call Update(dt) each simulation step.
//
// There is no global animation manager; users call Update themselves.
type TransformTween struct {
	tweens [3]*gween.Tween
	count  int
	last   [3]float32
	start  [3]float32
	step   func(t *Transform, prev, cur [3]float32)
	target *Transform
	Done   bool
}

// Update advances the tweens by dt seconds and applies the delta.
func (tw *TransformTween) Update(dt float32) {
	if tw.Done {
		return
	}
	var cur [3]float32
	allDone := true
	for i := 0; i < tw.count; i++ {
		val, finished := tw.tweens[i].Update(dt)
		cur[i] = val
		if !finished {
			allDone = false
		}
	}
	tw.step(tw.target, tw.last, cur)
	tw.last = cur
	tw.Done = allDone
}

// Reset rewinds the tweens so the same motion plays again from the
// transform's current state.
func (tw *TransformTween) Reset() {
	for i := 0; i < tw.count; i++ {
		tw.tweens[i].Reset()
	}
	tw.last = tw.start
	tw.Done = false
}

// TweenRotation rotates t by deg degrees around axis over duration seconds.
func TweenRotation(t *Transform, axis mgl32.Vec3, deg, duration float32, fn ease.TweenFunc) *TransformTween {
	tw := &TransformTween{count: 1, target: t}
	tw.tweens[0] = gween.New(0, deg, duration, fn)
	tw.step = func(t *Transform, prev, cur [3]float32) {
		if d := cur[0] - prev[0]; d != 0 {
			t.Rotate(d, axis)
		}
	}
	return tw
}

// TweenTranslation moves t by offset over duration seconds.
func TweenTranslation(t *Transform, offset mgl32.Vec3, duration float32, fn ease.TweenFunc) *TransformTween {
	tw := &TransformTween{count: 3, target: t}
	for i := 0; i < 3; i++ {
		tw.tweens[i] = gween.New(0, offset[i], duration, fn)
	}
	tw.step = func(t *Transform, prev, cur [3]float32) {
		d := mgl32.Vec3{cur[0] - prev[0], cur[1] - prev[1], cur[2] - prev[2]}
		if d != (mgl32.Vec3{}) {
			t.Translate(d[0], d[1], d[2])
		}
	}
	return tw
}

// TweenScale scales t by factor over duration seconds. Factors must be
// non-zero.
func TweenScale(t *Transform, factor mgl32.Vec3, duration float32, fn ease.TweenFunc) *TransformTween {
	tw := &TransformTween{count: 3, target: t, last: [3]float32{1, 1, 1}, start: [3]float32{1, 1, 1}}
	for i := 0; i < 3; i++ {
		tw.tweens[i] = gween.New(1, factor[i], duration, fn)
	}
	tw.step = func(t *Transform, prev, cur [3]float32) {
		var r [3]float32
		for i := range r {
			r[i] = 1
			if prev[i] != 0 {
				r[i] = cur[i] / prev[i]
			}
		}
		if r != [3]float32{1, 1, 1} {
			t.Scale(r[0], r[1], r[2])
		}
	}
	return tw
}
