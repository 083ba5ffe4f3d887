package tagtype

import "fmt"

// fallbackDefinitions mirrors the OpenEPaperLink resources/tagtypes directory:
// https://github.com/OpenEPaperLink/OpenEPaperLink/tree/master/resources/tagtypes
var fallbackDefinitions = []struct {
	id, version   int
	name          string
	width, height int
}{
	{0, 4, "M2 1.54\"", 152, 152},
	{1, 5, "M2 2.9\"", 296, 128},
	{2, 5, "M2 4.2\"", 400, 300},
	{3, 6, "M2 2.2\"", 212, 104},
	{4, 4, "M2 2.6\"", 296, 152},
	{5, 4, "M2 7.4\"", 640, 384},
	{6, 4, "Opticon 2.2\"", 250, 128},
	{7, 4, "Opticon 2.9\"", 296, 128},
	{8, 2, "Opticon 4.2\"", 400, 300},
	{9, 2, "Opticon 7.5\"", 640, 384},
	{17, 3, "M2 2.9\" (UC8151)", 296, 128},
	{18, 3, "M2 4.2\" UC", 400, 300},
	{33, 2, "ST‐GM29XXF 2.9\"", 296, 128},
	{34, 2, "M2 2.7\"", 264, 176},
	{38, 1, "M2 7.5\" BW", 640, 384},
	{39, 3, "ST‐GM29MT1 2.9\"", 296, 128},
	{40, 2, "M3 1.6\" BWRY", 168, 168},
	{41, 1, "M3 2.4\" BWRY", 296, 168},
	{42, 1, "M3 3.0\" BWRY", 400, 168},
	{43, 1, "M3 2.9\" BWRY", 384, 168},
	{44, 1, "M3 4.3\" BWRY", 522, 152},
	{45, 2, "M3 12.2\"", 960, 768},
	{46, 5, "M3 9.7\"", 960, 672},
	{47, 4, "M3 4.3\"", 522, 152},
	{48, 2, "M3 1.6\"", 200, 200},
	{49, 1, "M3 2.2\"", 296, 160},
	{50, 1, "M3 2.6\"", 360, 184},
	{51, 3, "M3 2.9\"", 384, 168},
	{52, 2, "M3 4.2\"", 400, 300},
	{53, 2, "M3 6.0\"", 600, 448},
	{54, 5, "M3 7.5\"", 800, 480},
	{55, 3, "M3 11.6\"", 960, 640},
	{60, 3, "M3 4.2\" BWY", 400, 300},
	{64, 1, "M3 2.9\" BW", 384, 168},
	{65, 1, "M3 5.85\"", 792, 272},
	{66, 1, "M3 5.85\" BW", 792, 272},
	{67, 2, "M3 1.3\" Peghook", 144, 200},
	{68, 2, "M3 5.81\" BW", 720, 256},
	{69, 3, "M3 2.2 Lite\"", 250, 128},
	{70, 1, "M3 2.2\" BW", 296, 160},
	{71, 4, "M3 2.7\"", 300, 200},
	{72, 1, "M3 5.81\" BWR", 720, 256},
	{73, 2, "M3 5.81\" V2 BWR", 720, 256},
	{74, 1, "M3 1.6\" 200px BWRY", 200, 200},
	{75, 1, "M3 2.2\" BWRY", 296, 160},
	{76, 1, "M3 7.5\" BWRY", 800, 480},
	{77, 3, "M3 11.6\" BWRY", 960, 640},
	{78, 2, "M3 2.6\" BW", 360, 184},
	{80, 2, "HD150 5.83\" BWR", 648, 480},
	{84, 4, "HS BW 2.13\"", 256, 128},
	{85, 5, "HS BWR 2.13\"", 256, 128},
	{86, 6, "HS BWR 2.66\"", 296, 152},
	{87, 3, "TLSR BWR 1.54\"", 200, 200},
	{88, 3, "TLSR BW 2.13\"", 256, 128},
	{89, 3, "TLSR BWR 2.13\"", 264, 136},
	{90, 1, "HS BW 2.13\" LowRes", 212, 104},
	{96, 6, "HS BWY 3.5\"", 384, 184},
	{97, 4, "HS BWR 3.5\"", 384, 184},
	{98, 4, "HS BW 3.5\"", 384, 184},
	{99, 6, "TLSR BWR 4.2\"", 400, 300},
	{102, 2, "HS BWY 7,5\"", 800, 480},
	{103, 3, "HS 2.00\" BWY", 152, 200},
	{104, 4, "HS BWY 3.46\"", 480, 176},
	{105, 4, "TLSR BW 2.13\"", 250, 136},
	{106, 1, "HS BWR 5,83\"", 648, 480},
	{107, 3, "HS BWRY 7,5\"", 800, 480},
	{108, 3, "HS BWRY 2,00\"", 152, 200},
	{109, 3, "HS BWRY 3,5\"", 384, 184},
	{110, 3, "HS BWRY 2,9\"", 296, 128},
	{111, 2, "HS BWRY 2,60\"", 296, 152},
	{128, 1, "Chroma 7.4\"", 640, 384},
	{129, 2, "Chroma Aeon 74 7.4\"", 800, 480},
	{130, 2, "Chroma29 2.9\"", 296, 128},
	{131, 2, "Chroma42 4.2\"", 400, 300},
	{176, 5, "Gicisky BLE EPD BW 2.13\"", 250, 128},
	{177, 5, "Gicisky BLE EPD BWR 2.13\"", 250, 128},
	{178, 2, "Gicisky BLE EPD BW 2.9\"", 296, 128},
	{179, 2, "Gicisky BLE EPD BWR 2.9\"", 296, 128},
	{181, 2, "Gicisky BLE EPD BWR 4.2\"", 400, 300},
	{186, 5, "Gicisky BLE TFT 2.13\"", 250, 136},
	{189, 2, "BLE EPD BWR 2.9\" Silabs", 384, 168},
	{190, 1, "ATC MiThermometer BLE", 6, 8},
	{192, 2, "BWRY example", 360, 184},
	{193, 1, "ACeP 4.01", 640, 400},
	{194, 1, "Spectra 7.3", 800, 480},
	{224, 2, "TFT 320x172", 320, 172},
	{225, 2, "TFT 160x80", 160, 80},
	{226, 1, "LILYGO TPANEL 4\"", 480, 480},
	{227, 1, "GDEM1085Z51 10.85\"", 1360, 480},
	{228, 1, "BLE TFT 128x128", 128, 128},
	{229, 1, "TFT 240x320", 320, 172},
	{240, 2, "SLT‐EM007 Segmented", 0, 0},
	{250, 1, "ConfigMode", 0, 0},
}

// Fallback returns the built-in definitions used when neither the source nor
// the store can provide any. Only version, name and dimensions are known;
// every other field takes its default.
func Fallback() map[int]*TagType {
	out := make(map[int]*TagType, len(fallbackDefinitions))
	for _, f := range fallbackDefinitions {
		name, version, width, height := f.name, f.version, f.width, f.height
		d := definition{Version: &version, Name: &name, Width: &width, Height: &height}
		out[f.id] = d.build(f.id)
	}
	return out
}

// unknownName is the display name reported for ids without a definition.
func unknownName(id int) string {
	return fmt.Sprintf("Unknown Type %d", id)
}
