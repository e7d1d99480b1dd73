package coco

// Class is one category in the evaluation universe.
type Class struct {
	// The integer category ID carried by annotations and detections.
	ID int
	// The human-readable label.
	Name string
}

// cocoClasses is the standard 80-category COCO detection set, keyed by the
// 1-based category IDs the dataset uses. Index 0 is reserved for background
// and is deliberately absent: background is never evaluated.
var cocoClasses = []Class{
	{1, "person"},
	{2, "bicycle"},
	{3, "car"},
	{4, "motorcycle"},
	{5, "airplane"},
	{6, "bus"},
	{7, "train"},
	{8, "truck"},
	{9, "boat"},
	{10, "traffic light"},
	{11, "fire hydrant"},
	{12, "stop sign"},
	{13, "parking meter"},
	{14, "bench"},
	{15, "bird"},
	{16, "cat"},
	{17, "dog"},
	{18, "horse"},
	{19, "sheep"},
	{20, "cow"},
	{21, "elephant"},
	{22, "bear"},
	{23, "zebra"},
	{24, "giraffe"},
	{25, "backpack"},
	{26, "umbrella"},
	{27, "handbag"},
	{28, "tie"},
	{29, "suitcase"},
	{30, "frisbee"},
	{31, "skis"},
	{32, "snowboard"},
	{33, "sports ball"},
	{34, "kite"},
	{35, "baseball bat"},
	{36, "baseball glove"},
	{37, "skateboard"},
	{38, "surfboard"},
	{39, "tennis racket"},
	{40, "bottle"},
	{41, "wine glass"},
	{42, "cup"},
	{43, "fork"},
	{44, "knife"},
	{45, "spoon"},
	{46, "bowl"},
	{47, "banana"},
	{48, "apple"},
	{49, "sandwich"},
	{50, "orange"},
	{51, "broccoli"},
	{52, "carrot"},
	{53, "hot dog"},
	{54, "pizza"},
	{55, "donut"},
	{56, "cake"},
	{57, "chair"},
	{58, "couch"},
	{59, "potted plant"},
	{60, "bed"},
	{61, "dining table"},
	{62, "toilet"},
	{63, "tv"},
	{64, "laptop"},
	{65, "mouse"},
	{66, "remote"},
	{67, "keyboard"},
	{68, "cell phone"},
	{69, "microwave"},
	{70, "oven"},
	{71, "toaster"},
	{72, "sink"},
	{73, "refrigerator"},
	{74, "book"},
	{75, "clock"},
	{76, "vase"},
	{77, "scissors"},
	{78, "teddy bear"},
	{79, "hair drier"},
	{80, "toothbrush"},
}

var cocoClassNames = func() map[int]string {
	names := make(map[int]string, len(cocoClasses))
	for _, c := range cocoClasses {
		names[c.ID] = c.Name
	}
	return names
}()

// DefaultClassIDs returns the 80 COCO category IDs in ascending order.
// This is the default class universe for evaluation.
func DefaultClassIDs() []int {
	ids := make([]int, len(cocoClasses))
	for i, c := range cocoClasses {
		ids[i] = c.ID
	}
	return ids
}

// ClassName returns the label for a COCO category ID.
// Unknown IDs return an empty string.
func ClassName(id int) string {
	return cocoClassNames[id]
}
