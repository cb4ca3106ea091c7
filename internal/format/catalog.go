package format

// Group is one family of interchangeable formats. Category names the
// converter template set that handles those conversions. Members
// convert freely within the group while InternalConversions holds;
// a group without it only reaches targets through special rules.
type Group struct {
	Name                string
	Category            string
	Members             []string
	InternalConversions bool
}

// Converter categories referenced by the rule document.
const (
	CategoryImage        = "image"
	CategoryVideo        = "video"
	CategoryAudio        = "audio"
	CategoryOffice       = "office"
	CategorySpreadsheet  = "spreadsheet"
	CategoryPresentation = "presentation"
	CategoryMarkup       = "markup"
	CategoryData         = "data"
	CategoryArchive      = "archive"
	CategorySpecial      = "special"
)

// builtinGroups is the static catalog. Member lists intentionally
// include alias spellings (JPG next to JPEG) so files named either way
// are recognized; canonicalization happens at the graph layer.
var builtinGroups = []Group{
	{
		Name:                "ARCHIVE",
		Category:            CategoryArchive,
		InternalConversions: true,
		Members: []string{
			"7Z", "DEB", "DMG", "ISO", "RAR", "RPM", "TAR",
			"TAR.BZ2", "TAR.GZ", "TAR.LZMA", "TAR.LZO", "TAR.XZ",
			"TGZ", "ZIP",
		},
	},
	{
		Name:                "AUDIO",
		Category:            CategoryAudio,
		InternalConversions: true,
		Members: []string{
			"AAC", "AC3", "AIFF", "ALAC", "CAF", "FLAC", "M4A",
			"MKA", "MP3", "OGG", "OPUS", "WAV", "WMA",
		},
	},
	{
		Name:                "DATA",
		Category:            CategoryData,
		InternalConversions: true,
		Members:             []string{"JSON", "TXT", "YAML", "YML"},
	},
	{
		Name:                "IMAGE",
		Category:            CategoryImage,
		InternalConversions: true,
		Members: []string{
			"AVIF", "BMP", "CR2", "GIF", "HEIC", "HEIF", "ICO",
			"JPEG", "JPG", "PNG", "RAW", "SVG", "TIF", "TIFF", "WEBP",
		},
	},
	{
		Name:                "MARKUP",
		Category:            CategoryMarkup,
		InternalConversions: true,
		Members:             []string{"HTM", "HTML", "MD", "XML"},
	},
	{
		Name:                "OFFICE",
		Category:            CategoryOffice,
		InternalConversions: true,
		Members:             []string{"DOC", "DOCX", "EPUB", "MOBI", "ODT", "PDF", "RTF"},
	},
	{
		Name:                "PRESENTATION",
		Category:            CategoryPresentation,
		InternalConversions: true,
		Members:             []string{"ODP", "PPT", "PPTX"},
	},
	{
		Name:                "SPREADSHEET",
		Category:            CategorySpreadsheet,
		InternalConversions: true,
		Members:             []string{"CSV", "ODS", "XLS", "XLSX"},
	},
	{
		Name:                "VIDEO",
		Category:            CategoryVideo,
		InternalConversions: true,
		Members: []string{
			"AVI", "M4V", "MKV", "MOV", "MP4", "MPEG", "MPG",
			"MTS", "TS", "WEBM", "WMV",
		},
	},
}
