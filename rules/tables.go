package rules

func to(n int) Target { return Index(n) }

var (
	none = NoEquivalent
	skip = Skip
)

// builtinRemaps returns a fresh copy of the stock skeleton conversions
func builtinRemaps() map[string]RemapTable {
	return map[string]RemapTable{
		"woman_to_man": {
			0: to(1), 1: to(3), 2: to(4), 11: none, 12: none, 3: to(4),
			4: to(3), 5: to(2), 13: to(7), 16: to(11), 21: to(16), 17: to(13),
			22: to(18), 26: to(38), 27: none, 28: none, 32: to(66), 33: none,
			36: to(91), 37: none, 18: to(12), 23: to(17), 29: to(37), 30: none,
			31: none, 34: to(65), 35: none, 38: to(86), 39: none, 6: to(3),
			14: to(8), 19: to(14), 24: to(19), 7: to(4), 15: to(9), 20: to(15),
			25: to(20), 8: to(6), 9: to(4), 10: to(3),
		},
		"jess_to_woman": {
			0: to(0), 1: to(1), 2: to(2), 3: to(3), 4: to(4), 5: to(5),
			6: to(6), 7: to(7), 8: to(8), 9: to(9), 10: to(10), 11: to(9),
			12: to(11), 13: to(12), 14: to(13), 15: to(14), 16: to(6), 17: to(15),
			18: to(7), 19: to(16), 20: to(17), 21: to(18), 22: to(19), 23: to(20),
			24: to(21), 25: to(22), 26: to(23), 27: to(24), 28: to(25), 29: none,
			30: to(26), 31: to(27), 32: to(28), 33: to(29), 34: to(30), 35: to(31),
			36: none, 37: to(32), 38: to(33), 39: to(33), 40: to(34), 41: to(35),
			42: to(35), 43: none, 44: to(36), 45: to(37), 46: to(38), 47: to(39),
			48: none,
		},
		"danny_to_woman": {
			0: to(0), 1: to(0), 2: to(5), 3: to(6), 4: to(7), 6: to(8),
			7: to(13), 11: to(16), 16: to(21), 9: to(15), 15: to(20), 20: to(25),
			26: none, 8: to(14), 14: to(19), 19: to(24), 25: none, 12: to(18),
			13: to(17), 18: to(22), 40: to(26), 70: to(32), 96: to(36), 17: to(23),
			39: to(29), 69: to(34), 91: to(38),
		},
		"danny_to_jess": {
			0: to(0), 1: to(0), 3: to(6), 8: to(15), 14: to(22), 19: to(27),
			4: to(7), 9: to(17), 15: to(23), 20: to(28), 6: to(8), 2: to(5),
			7: to(14), 11: to(19), 16: to(24), 22: to(29), 38: to(36), 55: to(43),
			68: to(48), 13: to(20), 18: to(25), 40: to(30), 70: to(37), 96: to(44),
			12: to(21), 17: to(26), 39: to(33), 69: to(40), 91: to(46), 24: skip,
			57: skip, 23: skip, 56: skip,
		},
		"man_to_woman": {
			0: to(0), 2: to(5), 3: to(6), 8: to(14), 14: to(19), 19: to(24),
			4: to(7), 9: to(15), 15: to(20), 20: to(25), 6: to(8), 7: to(13),
			11: to(16), 16: to(21), 12: to(18), 17: to(23), 37: to(29), 65: to(34),
			85: to(38), 86: to(38), 87: to(38), 88: to(38), 89: to(38), 13: to(17),
			18: to(22), 38: to(26), 66: to(32), 90: to(36), 91: to(36), 92: to(36),
			93: to(36), 94: to(36),
		},
		"danny_to_man": {
			0: to(0), 1: to(1), 2: to(2), 7: to(7), 11: to(11), 16: to(16),
			21: to(21), 22: none, 38: none, 55: none, 68: none, 79: none,
			27: to(26), 28: to(27), 29: to(28), 30: to(29), 31: to(30), 32: to(31),
			33: to(32), 34: to(33), 35: to(34), 36: to(35), 37: to(36), 41: to(39),
			42: to(40), 58: to(55), 71: to(67), 59: to(56), 72: to(68), 43: to(41),
			44: to(42), 45: to(43), 46: to(44), 47: to(45), 60: to(57), 73: to(69),
			61: to(58), 74: to(70), 62: to(59), 75: to(71), 63: to(60), 64: to(61),
			48: to(46), 49: to(47), 50: to(48), 65: to(62), 76: to(72), 66: to(63),
			77: to(73), 67: to(64), 78: to(74), 51: to(49), 52: to(50), 53: to(51),
			54: to(52), 12: to(12), 17: to(17), 23: to(22), 39: to(37), 56: to(53),
			69: to(65), 80: to(75), 81: to(76), 82: to(77), 83: to(78), 84: to(79),
			90: to(85), 100: to(95), 110: to(105), 91: to(86), 92: to(87), 93: to(88),
			94: to(89), 101: to(96), 102: to(97), 103: to(98), 104: to(99), 111: to(106),
			112: to(107), 113: to(108), 114: to(109), 120: to(115), 121: to(116), 122: to(117),
			123: to(118), 13: to(13), 18: to(18), 24: to(23), 40: to(38), 57: to(54),
			70: to(66), 85: to(80), 86: to(81), 87: to(82), 88: to(83), 89: to(84),
			95: to(90), 96: to(91), 97: to(92), 98: to(93), 99: to(94), 105: to(100),
			106: to(101), 107: to(102), 108: to(103), 109: to(104), 115: to(110), 116: to(111),
			117: to(112), 118: to(113), 119: to(114), 124: to(119), 125: to(120), 126: to(121),
			127: to(122), 3: to(3), 8: to(8), 14: to(14), 19: to(19), 25: to(24),
			4: to(4), 9: to(9), 15: to(15), 20: to(20), 26: to(25), 5: to(5),
			10: to(10), 6: to(6),
		},
		"danny_to_sd2_woman": {
			0: to(0), 1: to(1), 2: to(2), 3: to(3), 4: to(4), 5: to(5),
			6: to(6), 7: to(7), 8: to(8), 9: to(9), 10: to(10), 11: to(11),
			12: to(12), 13: to(13), 14: to(14), 15: to(15), 16: to(16), 17: to(17),
			18: to(18), 19: to(19), 20: to(20), 22: to(21), 38: to(26), 55: to(29),
			68: to(32), 79: to(35), 23: to(22), 39: to(27), 56: to(30), 69: to(33),
			80: to(36), 81: to(37), 82: to(38), 83: to(39), 84: to(40), 90: to(46),
			91: to(47), 92: to(48), 93: to(49), 94: to(50), 100: to(56), 101: to(57),
			102: to(58), 103: to(59), 104: to(60), 110: to(66), 111: to(67), 112: to(68),
			113: to(69), 114: to(70), 120: to(76), 121: to(77), 122: to(78), 123: to(79),
			24: to(23), 40: to(28), 57: to(31), 70: to(34), 85: to(41), 86: to(42),
			87: to(43), 88: to(44), 89: to(45), 95: to(51), 96: to(52), 97: to(53),
			98: to(54), 99: to(55), 105: to(61), 106: to(62), 107: to(63), 108: to(64),
			109: to(65), 115: to(71), 116: to(72), 117: to(73), 118: to(74), 119: to(75),
			124: to(80), 125: to(81), 126: to(82), 127: to(83), 26: to(25), 25: to(24),
		},
		"sd2_woman_to_danny": {
			0: to(0), 1: to(1), 2: to(2), 3: to(3), 4: to(4), 5: to(5),
			6: to(6), 7: to(7), 8: to(8), 9: to(9), 10: to(10), 11: to(11),
			12: to(12), 13: to(13), 14: to(14), 15: to(15), 16: to(16), 17: to(17),
			18: to(18), 19: to(19), 20: to(20), 21: to(22), 26: to(38), 29: to(55),
			32: to(68), 35: to(79), 22: to(23), 27: to(39), 30: to(56), 33: to(69),
			36: to(80), 37: to(81), 38: to(82), 39: to(83), 40: to(84), 46: to(90),
			47: to(91), 48: to(92), 49: to(93), 50: to(94), 56: to(100), 57: to(101),
			58: to(102), 59: to(103), 60: to(104), 66: to(110), 67: to(111), 68: to(112),
			69: to(113), 70: to(114), 76: to(120), 77: to(121), 78: to(122), 79: to(123),
			23: to(24), 28: to(40), 31: to(57), 34: to(70), 41: to(85), 42: to(86),
			43: to(87), 44: to(88), 45: to(89), 51: to(95), 52: to(96), 53: to(97),
			54: to(98), 55: to(99), 61: to(105), 62: to(106), 63: to(107), 64: to(108),
			65: to(109), 71: to(115), 72: to(116), 73: to(117), 74: to(118), 75: to(119),
			80: to(124), 81: to(125), 82: to(126), 83: to(127), 25: to(26), 24: to(25),
		},
		"sd2_piratess_to_danny": {
			0: to(0), 1: to(1), 2: to(2), 3: to(3), 4: to(4), 5: to(5),
			6: to(6), 7: to(7), 8: to(8), 9: to(9), 10: to(10), 11: to(11),
			12: to(12), 13: to(13), 14: to(14), 15: to(15), 16: to(16), 17: to(17),
			18: to(18), 19: to(19), 20: to(20), 21: to(23), 25: to(39), 27: to(56),
			29: to(69), 31: to(80), 32: to(81), 33: to(82), 34: to(83), 35: to(84),
			41: to(90), 42: to(91), 43: to(92), 44: to(93), 45: to(94), 51: to(100),
			52: to(101), 53: to(102), 54: to(103), 55: to(104), 61: to(110), 62: to(111),
			63: to(112), 64: to(113), 65: to(114), 71: to(120), 72: to(121), 73: to(122),
			74: to(123), 22: to(24), 26: to(40), 28: to(57), 30: to(70), 36: to(85),
			37: to(86), 38: to(87), 39: to(88), 40: to(89), 46: to(95), 47: to(96),
			48: to(97), 49: to(98), 50: to(99), 56: to(105), 57: to(106), 58: to(107),
			59: to(108), 60: to(109), 66: to(115), 67: to(116), 68: to(117), 69: to(118),
			70: to(119), 75: to(124), 76: to(125), 77: to(126), 78: to(127), 24: to(26),
			23: to(25),
		},
		"sd2_man_to_man": {
			0: to(0), 1: to(1), 2: to(2), 3: to(3), 4: to(4), 5: to(5),
			6: to(6), 7: to(7), 8: to(8), 9: to(9), 10: to(10), 11: to(11),
			12: to(12), 13: to(13), 14: to(14), 15: to(15), 16: to(16), 17: to(17),
			18: to(18), 19: to(19), 20: to(20), 21: to(22), 25: to(37), 27: to(53),
			29: to(65), 31: to(75), 32: to(76), 33: to(77), 34: to(78), 35: to(79),
			41: to(85), 42: to(86), 43: to(87), 44: to(88), 45: to(89), 51: to(95),
			52: to(96), 53: to(97), 54: to(98), 55: to(99), 61: to(105), 62: to(106),
			63: to(107), 64: to(108), 65: to(109), 71: to(115), 72: to(116), 73: to(117),
			74: to(118), 22: to(23), 26: to(38), 28: to(54), 30: to(66), 36: to(80),
			37: to(81), 38: to(82), 39: to(83), 40: to(84), 46: to(90), 47: to(91),
			48: to(92), 49: to(93), 50: to(94), 56: to(100), 57: to(101), 58: to(102),
			59: to(103), 60: to(104), 66: to(110), 67: to(111), 68: to(112), 69: to(113),
			70: to(114), 75: to(119), 76: to(120), 77: to(121), 78: to(122), 24: to(25),
			23: to(24),
		},
	}
}
