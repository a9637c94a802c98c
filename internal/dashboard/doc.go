// Package dashboard is the terminal UI for dockmon.
//
// The dashboard never talks to the daemon. It reads one state.Snapshot per
// frame and turns key presses into view state mutations or commands on the
// store's command channel, which the sync loop executes.
//
// # Message Flow
//
//  1. frameMsg fires every 100ms: the spinner advances, a fresh snapshot is
//     taken and the scroll bounds for the current geometry are written back
//  2. countdownMsg fires every second and drives the fatal error countdown
//  3. execMsg arrives when the sync loop has created a shell session; the
//     terminal is handed over with tea.Exec until the shell exits
//
// # Layout
//
// The containers table always shows name, state, cpu and memory. rx and tx,
// then status, id and image are added as the width allows. Below
// BreakpointCompact (LayoutMinimal) memory drops the limit.
//
// Charts are only drawn when the terminal is at least HeightCharts rows tall.
//
// # Overlays
//
// Help, the error popup, the inspect viewer, the delete confirmation and
// the filter line are drawn over (or below) the main layout. While one is
// open it receives the keys first.
package dashboard
