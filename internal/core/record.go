package core

// The store layer is generic over the two record types; these methods give
// it the little it needs to know: the backend id and how to stamp ownership.

func (t Transaction) RecordID() int64 { return t.ID }

func (t Transaction) WithOwner(ownerID string) Transaction {
	t.OwnerID = ownerID
	return t
}

func (c Category) RecordID() int64 { return c.ID }

func (c Category) WithOwner(ownerID string) Category {
	c.OwnerID = ownerID
	return c
}
