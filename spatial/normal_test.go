package spatial

import (
	"testing"

	"github.com/achilleasa/svoxtrace/types"
)

func TestImpactNormalIsAxisAligned(t *testing.T) {
	c := Cube{Origin: types.XYZ(0, 0, 0), Size: 4}
	cases := []struct {
		point types.Vec3
		want  types.Vec3
	}{
		{types.XYZ(0, 2, 2), types.XYZ(-1, 0, 0)},
		{types.XYZ(4, 2, 2), types.XYZ(1, 0, 0)},
		{types.XYZ(2, 0, 2), types.XYZ(0, -1, 0)},
		{types.XYZ(2, 2, 0), types.XYZ(0, 0, -1)},
	}
	for _, tc := range cases {
		got := ImpactNormal(c, tc.point)
		for i := 0; i < 3; i++ {
			if abs32(got[i]-tc.want[i]) > 1e-3 {
				t.Fatalf("point %v: want normal %v, got %v", tc.point, tc.want, got)
			}
		}
	}
}
