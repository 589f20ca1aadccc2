package enums

type MediaSlot string

const (
	MediaSlotImages    MediaSlot = "images"
	MediaSlotVideo     MediaSlot = "video"
	MediaSlotDocuments MediaSlot = "documents"
)

func (s MediaSlot) Valid() bool {
	switch s {
	case MediaSlotImages, MediaSlotVideo, MediaSlotDocuments:
		return true
	default:
		return false
	}
}
