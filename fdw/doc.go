// Package fdw exposes guest row-producing sequences, and optional
// row-mutating operations, through the host's fixed foreign-table callback
// table.
//
// A guest implements ForeignTable (and optionally Modifier on its sessions);
// New wraps it into a Wrapper whose Routine fills the host's callback slots.
// The scan path runs Planning → Scan-Begin → Iterate* → Re-scan → Scan-End;
// the modify path runs Modify-Begin → {Insert|Update|Delete}* → Modify-End,
// with declared index columns injected into the statement's target list so
// Update and Delete always receive key values.
//
// Field-lookup failures during row production are logged at Warning severity
// and surface as null columns; guest production errors abort the statement
// through the host's error channel.
package fdw
