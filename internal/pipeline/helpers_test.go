package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const fixtureHeader = "Order ID,Order Date,Ship Date,Customer Name,Region,Category,Product Name,Sales,Quantity,Discount,Profit\n"

// fixtureCSV has seven rows, one an exact duplicate and one with negative profit.
const fixtureCSV = fixtureHeader +
	"CA-1,11/8/2016,11/11/2016,Claire Gute,South,Furniture,Bush Bookcase,261.96,2,0,41.9136\n" +
	"CA-1,11/8/2016,11/11/2016,Claire Gute,South,Furniture,Hon Chair,731.94,3,0,219.582\n" +
	"CA-2,6/12/2016,6/16/2016,Darrin Van Huff,West,Office Supplies,Avery Labels,14.62,2,0,6.8714\n" +
	"CA-3,10/11/2015,10/18/2015,Sean O'Donnell,South,Furniture,Bretford Table,957.5775,5,0.45,-383.031\n" +
	"CA-3,10/11/2015,10/18/2015,Sean O'Donnell,South,Office Supplies,Eldon Base,22.368,2,0.2,2.5164\n" +
	"CA-3,10/11/2015,10/18/2015,Sean O'Donnell,South,Office Supplies,Eldon Base,22.368,2,0.2,2.5164\n" +
	"CA-4,1/3/2017,1/7/2017,Zuschuss Donatelli,Central,Technology,Apple Phone,907.152,6,0.2,90.7152\n"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
