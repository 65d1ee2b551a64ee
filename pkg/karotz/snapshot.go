package karotz

import "context"

// SnapshotList returns the stored snapshot file names, or an empty list when the
// device reports a failure.
func (c *Client) SnapshotList(ctx context.Context) ([]string, error) {
	res, ok, err := c.result(ctx, newRequest(cmdSnapshotList))
	if err != nil {
		return nil, err
	}
	if !ok {
		return []string{}, nil
	}
	return entryIDs(res.Snapshots), nil
}

// ClearSnapshots deletes all stored snapshots.
func (c *Client) ClearSnapshots(ctx context.Context) (bool, error) {
	return c.succeeded(ctx, newRequest(cmdClearSnapshots))
}

// TakeSnapshot takes a camera picture, silently or with the shutter sound.
func (c *Client) TakeSnapshot(ctx context.Context, silent bool) (bool, error) {
	return c.succeeded(ctx, newRequest(cmdSnapshot).withBool("silent", silent))
}
