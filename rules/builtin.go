package rules

// source clip frame ranges where the danny hands and shoulders drift
var dannyDriftWindows = []FrameWindow{
	{From: 24533, To: 24593},
	{From: 32689, To: 32720},
}

func fixedDrift(x, y, z float32) *FixedEulerFixup {
	return &FixedEulerFixup{
		Degrees: [3]float32{x, y, z},
		Windows: append([]FrameWindow(nil), dannyDriftWindows...),
	}
}

func skirt(ref, mod int, dir string, offset ...float32) *SkirtFixup {
	f := &SkirtFixup{Reference: ref, Modifier: mod, Direction: dir}
	if len(offset) == 3 {
		f.Offset = &[3]float32{offset[0], offset[1], offset[2]}
	}
	return f
}

func legSpread(mirror bool, yOffset float32) *LegSpreadFixup {
	return &LegSpreadFixup{
		LeftLeg: 3, LeftShin: 8,
		RightLeg: 4, RightShin: 9,
		Mirror:  mirror,
		YOffset: yOffset,
	}
}

// builtinFixups returns a fresh copy of the stock fix-up sets. Sets named
// after a remap table apply to segments converted with it, the others are
// selected by the cookbook fix_rule.
func builtinFixups() map[string]FixupSet {
	return map[string]FixupSet{
		"woman_to_man": {
			1:  skirt(6, 1, "f", 60, 0, 0),
			2:  skirt(7, 2, "f", -60, 0, 0),
			3:  skirt(7, 3, "b"),
			4:  skirt(6, 4, "b"),
			9:  skirt(7, 9, "", 0, -20, 0),
			10: skirt(6, 10, "", 0, 20, 0),
		},
		"danny_to_man": {
			1:  legSpread(false, 0),
			2:  legSpread(true, 0),
			3:  legSpread(true, -4),
			4:  legSpread(true, 4),
			38: &HairBlendFixup{First: 11, Second: 16, Divisor: 2.5},
			70: fixedDrift(-1.94789, 18.06650, -1.6005),
			57: fixedDrift(-4.25439, -6.56844, -5.5424),
			40: fixedDrift(5.42489, -23.59684, 17.122033),
			24: fixedDrift(0.27161, 11.62612, -13.56011),
			18: fixedDrift(-1.394899, 1.9225509, 2.55450999),
		},
		"danny_to_jess": {
			22: &RestDeltaFixup{SourceBone: 29, TargetBone: 22},
			38: &RestDeltaFixup{SourceBone: 36, TargetBone: 38},
			55: &RestDeltaFixup{SourceBone: 43, TargetBone: 55},
			68: &RestDeltaFixup{SourceBone: 48, TargetBone: 68},
		},
		"jess_fix_hair": {
			22: &HairAlignFixup{Bone: 22, Rest: [4]float32{-0.340719, -0.606968, 0.338404, 0.633232}},
		},
		"hand_make_straight": {
			39: &HandStraightenFixup{Middle: 56},
			56: &RestHoldFixup{Bone: 56},
			69: &HandStraightenFixup{Middle: 56, Window: &HandWindow{
				From: 13319, To: 13345,
				BaseBone: 69, BaseFrame: 13324,
				Base: [4]float32{0.527591, -0.425861, -0.734265, -0.033846},
			}},
			40: &HandStraightenFixup{Middle: 57},
			57: &RestHoldFixup{Bone: 57},
			70: &HandStraightenFixup{Middle: 57},
		},
	}
}
