package event

import (
	"go.mongodb.org/mongo-driver/bson"
)

// Document returns the event as an ordered BSON document: the X-Trace id
// first, then every annotation in insertion order, then one Edge entry per
// predecessor. Repeated keys are kept.
func (e *Event) Document() (bson.D, error) {
	xtrace, err := e.md.Format()
	if err != nil {
		return nil, err
	}

	doc := make(bson.D, 0, 1+len(e.info)+len(e.edges))
	doc = append(doc, bson.E{Key: KeyXTrace, Value: xtrace})
	for _, kv := range e.info {
		doc = append(doc, bson.E{Key: kv.Key, Value: kv.Value})
	}
	for _, op := range e.edges {
		doc = append(doc, bson.E{Key: KeyEdge, Value: op.String()})
	}
	return doc, nil
}

// MarshalBSON implements bson.Marshaler.
func (e *Event) MarshalBSON() ([]byte, error) {
	doc, err := e.Document()
	if err != nil {
		return nil, err
	}
	return bson.Marshal(doc)
}
