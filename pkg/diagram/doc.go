// Package diagram defines the class-diagram document model and its loaders.
//
// A document lists boxes (classes) with explicit pixel positions and links
// (relationships) between them:
//
//	{
//	  "cx": 600, "cy": 400,
//	  "nodes": [
//	    {"id": "a", "x": 20, "y": 20, "width": 120, "height": 60,
//	     "textLines": [{"text": "Order", "type": "title"}, {}, {"text": "+id: int", "align": "left"}]},
//	    {"id": "b", "x": 320, "y": 20, "width": 120, "height": 60}
//	  ],
//	  "links": [
//	    {"source": "a", "target": "b", "textStartTop": "items", "textEndBtm": "0..*"}
//	  ]
//	}
//
// Documents are read from JSON or YAML ([Load], [Decode]) and checked against
// an embedded JSON schema. Ids may be strings or numbers and hide flags may
// be booleans or 0/1, matching what diagram exporters emit.
//
// [Resolve] matches link ends to boxes. Links naming unknown boxes are
// dropped and reported as [Diagnostic] values; resolution never fails.
// [Check] reports the remaining contract violations (duplicate ids,
// non-positive sizes) without rejecting the document.
package diagram
