package scope

import "path"

// Capture saves waveforms onto the instrument's USB drive under a fixed directory and
// file name.
type Capture struct {
	s        *Session
	mount    MountPoint
	dataDir  string
	fileName string
}

// NewCapture creates an export policy for s. dataDir may be empty.
func NewCapture(s *Session, mount MountPoint, dataDir, fileName string) *Capture {
	return &Capture{
		s:        s,
		mount:    mount,
		dataDir:  dataDir,
		fileName: fileName,
	}
}

// Path returns the file path relative to the drive root.
func (c *Capture) Path() string {
	if c.fileName == "" {
		return ""
	}
	return path.Join(c.dataDir, c.fileName)
}

// Save makes the instrument write the current waveform to Path on the mount point.
func (c *Capture) Save() error {
	return c.s.SaveCSV(c.mount, c.Path())
}
