// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package render

// ToneMap maps the linear HDR color rgb to [0, 1]
// using the given operator and exposure.
// With NoToneMapping, rgb is returned unchanged.
func ToneMap(t ToneMapping, exposure float32, rgb [3]float32) [3]float32 {
	switch t {
	case Linear:
		for i := range rgb {
			rgb[i] = saturate(rgb[i] * exposure)
		}
	case Reinhard:
		for i := range rgb {
			c := max(0, rgb[i]*exposure)
			rgb[i] = saturate(c / (1 + c))
		}
	case ACESFilmic:
		rgb = acesFilmic(rgb, exposure)
	}
	return rgb
}

func saturate(x float32) float32 {
	// NaN becomes 0.
	if !(x > 0) {
		return 0
	}
	return min(x, 1)
}

// Stephen Hill's fit of the ACES RRT and ODT,
// with the sRGB input/output transforms.
var (
	acesIn = [3][3]float32{
		{0.59719, 0.35458, 0.04823},
		{0.07600, 0.90834, 0.01566},
		{0.02840, 0.13383, 0.83777},
	}
	acesOut = [3][3]float32{
		{1.60475, -0.53108, -0.07367},
		{-0.10208, 1.10813, -0.00605},
		{-0.00327, -0.07276, 1.07602},
	}
)

func mul3(m *[3][3]float32, v [3]float32) (w [3]float32) {
	for i := range w {
		w[i] = m[i][0]*v[0] + m[i][1]*v[1] + m[i][2]*v[2]
	}
	return
}

func acesFilmic(rgb [3]float32, exposure float32) [3]float32 {
	for i := range rgb {
		rgb[i] *= exposure / 0.6
	}
	rgb = mul3(&acesIn, rgb)
	for i, v := range rgb {
		a := v*(v+0.0245786) - 0.000090537
		b := v*(0.983729*v+0.4329510) + 0.238081
		rgb[i] = a / b
	}
	rgb = mul3(&acesOut, rgb)
	for i := range rgb {
		rgb[i] = saturate(rgb[i])
	}
	return rgb
}
