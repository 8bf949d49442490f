package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"dikecontrol/services"
)

// ── Definition structs ───────────────────────────────────────────────────

type sectorDef struct {
	id   string
	name string
}

type dikeDef struct {
	id              string
	sectorID        string
	name            string
	progInicioRio   string
	progFinRio      string
	progInicioDique string
	progFinDique    string
	totalML         float64
}

// ── Seed data ────────────────────────────────────────────────────────────

var seedSectors = []sectorDef{
	{id: "CASMA", name: "SECTOR CASMA"},
	{id: "CONFLUENCIA", name: "SECTOR CONFLUENCIA"},
	{id: "RIO_GRANDE", name: "SECTOR RIO GRANDE"},
	{id: "SECHIN", name: "SECTOR SECHIN"},
}

var seedDikes = []dikeDef{
	// SECTOR CASMA
	{id: "DIPR_001_MI", sectorID: "CASMA", name: "DIPR_001_MI", progInicioRio: "0+140.000", progFinRio: "5+500.000", progInicioDique: "0+560.000", progFinDique: "2+700.000", totalML: 2140.00},
	{id: "DIPR_002_MD", sectorID: "CASMA", name: "DIPR_002_MD", progInicioRio: "0+490.000", progFinRio: "5+500.000", progInicioDique: "-0+004.190", progFinDique: "5+064.290", totalML: 5068.48},

	// SECTOR CONFLUENCIA
	{id: "DIPR_001b_MI", sectorID: "CONFLUENCIA", name: "DIPR_001b_MI", progInicioRio: "5+500.000", progFinRio: "9+050.000", progInicioDique: "5+397.000", progFinDique: "8+922.000", totalML: 3525.00},
	{id: "DIPR_002b_MD", sectorID: "CONFLUENCIA", name: "DIPR_002b_MD", progInicioRio: "1+025.000", progFinRio: "5+500.000", progInicioDique: "5+064.000", progFinDique: "11+175.000", totalML: 6111.00},
	{id: "DIPR_003_MI", sectorID: "CONFLUENCIA", name: "DIPR_003_MI", progInicioRio: "9+857.000", progFinRio: "10+438.000", progInicioDique: "0+011.000", progFinDique: "0+579.000", totalML: 568.00},
	{id: "DIPR_004_MI", sectorID: "CONFLUENCIA", name: "DIPR_004_MI", progInicioRio: "0+971.000", progFinRio: "3+969.000", progInicioDique: "0+060.000", progFinDique: "0+920.000", totalML: 860.00},
	{id: "DIPR_005_MI", sectorID: "CONFLUENCIA", name: "DIPR_005_MI", progInicioRio: "2+218.000", progFinRio: "10+998.000", progInicioDique: "0+000.000", progFinDique: "8+900.000", totalML: 8900.00},
	{id: "DIPR_006_MD", sectorID: "CONFLUENCIA", name: "DIPR_006_MD", progInicioRio: "5+823.000", progFinRio: "10+999.000", progInicioDique: "0+000.000", progFinDique: "5+946.030", totalML: 5946.03},
	{id: "DIPR_015_MD", sectorID: "CONFLUENCIA", name: "DIPR_015_MD", progInicioRio: "1+954.000", progFinRio: "6+000.000", progInicioDique: "0+000.000", progFinDique: "4+047.886", totalML: 4047.89},
	{id: "DIPR_016_MI", sectorID: "CONFLUENCIA", name: "DIPR_016_MI", progInicioRio: "1+950.000", progFinRio: "6+000.000", progInicioDique: "0+000.000", progFinDique: "4+055.678", totalML: 4055.68},
	{id: "MIPR-001-MD", sectorID: "CONFLUENCIA", name: "MIPR-001-MD", progInicioRio: "1+950.000", progFinRio: "6+000.000", progInicioDique: "0+000.000", progFinDique: "0+838.000", totalML: 4050.00},
	{id: "DESCOL_1_C", sectorID: "CONFLUENCIA", name: "Descolmatación 1", progInicioRio: "5+500.000", progFinRio: "10+643.000", totalML: 5143.00},
	{id: "DESCOL_2_C", sectorID: "CONFLUENCIA", name: "Descolmatación 2", progInicioRio: "0+000.000", progFinRio: "6+000.000", totalML: 6000.00},
	{id: "DESCOL_3_C", sectorID: "CONFLUENCIA", name: "Descolmatación 3", progInicioRio: "0+000.000", progFinRio: "11+000.000", totalML: 11000.00},

	// SECTOR RIO GRANDE
	{id: "DIPR_05_MI_RG", sectorID: "RIO_GRANDE", name: "DIPR-005-MI", progInicioRio: "11+000.000", progFinRio: "25+940.000", progInicioDique: "8+900.000", progFinDique: "24+116.000", totalML: 15216.00},
	{id: "DIPR_06_MD_RG", sectorID: "RIO_GRANDE", name: "DIPR-006-MD", progInicioRio: "11+000.000", progFinRio: "13+910.000", progInicioDique: "5+946.000", progFinDique: "8+845.000", totalML: 2899.00},
	{id: "DIPR_08_MD_RG", sectorID: "RIO_GRANDE", name: "DIPR-008-MD", progInicioRio: "18+228.000", progFinRio: "18+722.000", progInicioDique: "0+000.000", progFinDique: "0+470.000", totalML: 470.00},
	{id: "DIPR_09_MD_RG", sectorID: "RIO_GRANDE", name: "DIPR-009-MD", progInicioRio: "19+974.000", progFinRio: "32+890.000", progInicioDique: "0+000.000", progFinDique: "12+862.000", totalML: 12862.00},
	{id: "DIPR_10_MI_RG", sectorID: "RIO_GRANDE", name: "DIPR-010-MI", progInicioRio: "27+610.000", progFinRio: "28+300.000", progInicioDique: "0+000.000", progFinDique: "0+662.000", totalML: 662.00},
	{id: "DIPR_11_MI_RG", sectorID: "RIO_GRANDE", name: "DIPR-011-MI", progInicioRio: "28+445.000", progFinRio: "29+210.000", progInicioDique: "0+000.000", progFinDique: "0+747.000", totalML: 747.00},
	{id: "DIPR_12_MD_RG", sectorID: "RIO_GRANDE", name: "DIPR-012-MD", progInicioRio: "32+960.000", progFinRio: "34+190.000", progInicioDique: "0+000.000", progFinDique: "1+214.000", totalML: 1214.00},
	{id: "DIPR_13_MD_RG", sectorID: "RIO_GRANDE", name: "DIPR-013-MD", progInicioRio: "35+220.000", progFinRio: "36+890.000", progInicioDique: "0+000.000", progFinDique: "1+739.000", totalML: 1739.00},
	{id: "DIPR_14_MI_RG", sectorID: "RIO_GRANDE", name: "DIPR-014-MI", progInicioRio: "35+630.000", progFinRio: "36+910.000", progInicioDique: "0+000.000", progFinDique: "1+275.050", totalML: 1275.05},

	// SECTOR SECHIN
	{id: "DIPR_015_MD_S", sectorID: "SECHIN", name: "DIPR_015_MD", progInicioRio: "6+000.000", progFinRio: "8+060.000", progInicioDique: "4+047.886", progFinDique: "6+130.000", totalML: 2082.11},
	{id: "DIPR_016_MI_S", sectorID: "SECHIN", name: "DIPR_016_MI", progInicioRio: "6+000.000", progFinRio: "19+500.000", progInicioDique: "4+055.678", progFinDique: "14+754.000", totalML: 10698.32},
	{id: "DIPR_017_MD_S", sectorID: "SECHIN", name: "DIPR_017_MD", progInicioRio: "9+100.000", progFinRio: "13+520.000", progInicioDique: "0+000.000", progFinDique: "4+452.000", totalML: 4452.00},
	{id: "DIPR_018_MD_S", sectorID: "SECHIN", name: "DIPR_018_MD", progInicioRio: "15+280.000", progFinRio: "19+500.000", progInicioDique: "0+000.000", progFinDique: "3+130.000", totalML: 3130.00},
	{id: "DIPR_019_MD_S", sectorID: "SECHIN", name: "DIPR_019_MD", progInicioRio: "21+033.000", progFinRio: "21+289.000", progInicioDique: "0+000.000", progFinDique: "0+290.000", totalML: 290.00},
	{id: "DIPR_020_MD_S", sectorID: "SECHIN", name: "DIPR_020_MD", progInicioRio: "22+756.000", progFinRio: "23+600.000", progInicioDique: "0+000.000", progFinDique: "0+855.000", totalML: 855.00},
	{id: "DIPR_021_MI_S", sectorID: "SECHIN", name: "DIPR_021_MI", progInicioRio: "21+550.000", progFinRio: "23+539.000", progInicioDique: "0+000.000", progFinDique: "1+840.000", totalML: 1840.00},
	{id: "DESCOL_1_S", sectorID: "SECHIN", name: "Descolmatación 1", progInicioRio: "6+000.000", progFinRio: "19+500.000", totalML: 13500.00},
	{id: "DESCOL_2_S", sectorID: "SECHIN", name: "Descolmatación 2", progInicioRio: "21+033.000", progFinRio: "23+600.000", totalML: 2567.00},
}

// InitialBudget returns a fresh copy of the contractual budget template.
// Every sector starts from this template; callers may mutate the result
// freely.
func InitialBudget() []services.BudgetSection {
	return []services.BudgetSection{
		{
			ID:   "A",
			Name: "A - TRABAJOS DE OPERACIÓN Y EXPLOTACIÓN EN CANTERA",
			Groups: []services.BudgetGroup{
				{
					ID: "100", Code: "100", Name: "OBRAS PROVISIONALES",
					Items: []services.BudgetItem{
						{ID: "101.A", Code: "101.A", Description: "TRÁMITE, GESTIÓN Y OBTENCIÓN DE PERMISOS PARA USO Y ADQUISICIÓN DE EXPLOSIVOS", Unit: "glb", Metrado: 1.00, Price: 4141.55},
						{ID: "101.B", Code: "101.B", Description: "TRÁMITE, GESTIÓN Y OBTENCIÓN DE PERMISOS PARA MANIPULACIÓN DE EXPLOSIVOS", Unit: "glb", Metrado: 1.00, Price: 4141.55},
						{ID: "101.C", Code: "101.C", Description: "TRÁMITE, GESTIÓN Y OBTENCIÓN DE PERMISOS PARA ALMACENAMIENTO Y USO DE POLVORÍN", Unit: "glb", Metrado: 1.00, Price: 5508.26},
						{ID: "103.A", Code: "103.A", Description: "INSTALACIÓN DE CAMPAMENTO, PATIO, TALLER Y OFICINAS", Unit: "glb", Metrado: 1.00, Price: 293205.31},
					},
				},
				{
					ID: "200", Code: "200", Name: "OBRAS PRELIMINARES",
					Items: []services.BudgetItem{
						{ID: "201.A", Code: "201.A", Description: "MOVILIZACIÓN Y DESMOVILIZACIÓN DE MAQUINARIA", Unit: "glb", Metrado: 1.00, Price: 438432.84},
						{ID: "203.A", Code: "203.A", Description: "CONTROL TOPOGRAFICO DE LOS TRABAJOS", Unit: "mes", Metrado: 8.00, Price: 20122.88},
						{ID: "204.A", Code: "204.A", Description: "HABILITACIÓN DE CAMINOS DE ACCESOS A CANTERA", Unit: "km", Metrado: 4.97, Price: 74354.61},
					},
				},
				{
					ID: "300", Code: "300", Name: "OPERACIÓN Y EXPLOTACION DE MATERIAL",
					Items: []services.BudgetItem{
						{ID: "301.A", Code: "301.A", Description: "EXTRACCIÓN DE ROCA EN CANTERA (CON EXPLOSIVOS)", Unit: "m3", Metrado: 387726.24, Price: 39.22},
						{ID: "303.A", Code: "303.A", Description: "SELECCIÓN Y ACOPIO DE ROCA (ACUERDO AL DISEÑO Y POR TIPO)", Unit: "m3", Metrado: 387726.24, Price: 30.12},
					},
				},
			},
		},
		{
			ID:   "B",
			Name: "B - CONSTRUCCIÓN DE DEFENSAS RIBEREÑAS",
			Groups: []services.BudgetGroup{
				{
					ID: "B1", Code: "B1", Name: "CONSTRUCCIÓN DE DIQUE NUEVO",
					Items: []services.BudgetItem{
						{ID: "401.A", Code: "401.A", Description: "DESBROCE Y LIMPIEZA", Unit: "ha", Metrado: 0.12, Price: 6687.17},
						{ID: "402.B", Code: "402.B", Description: "EXCAVACIÓN MASIVA EN MATERIAL SUELTO, CON EQUIPO", Unit: "m3", Metrado: 221213.79, Price: 7.62},
						{ID: "402.C", Code: "402.C", Description: "EXCAVACIÓN EN ROCA SUELTA CON EQUIPO", Unit: "m3", Metrado: 2257.28, Price: 18.38},
						{ID: "402.D", Code: "402.D", Description: "EXCAVACION DE ROCA FIJA CON MARTILLO HIDRÁULICO", Unit: "m3", Metrado: 2257.28, Price: 116.66},
						{ID: "402.E", Code: "402.E", Description: "EXCAVACION DE UÑA EN MATERIAL CON NIVEL FREÁTICO", Unit: "m3", Metrado: 125470.90, Price: 12.12},
						{ID: "403.A", Code: "403.A", Description: "CONFORMACIÓN Y COMPACTACIÓN DE DIQUE", Unit: "m3", Metrado: 275530.39, Price: 14.26},
						{ID: "404.A", Code: "404.A", Description: "ENROCADO Y ACOMODO PARA PROTECCIÓN DE TALUD TIPO 1", Unit: "m3", Metrado: 61919.47, Price: 43.02},
						{ID: "404.B", Code: "404.B", Description: "ENROCADO Y ACOMODO PARA PROTECCIÓN DE TALUD TIPO 2", Unit: "m3", Metrado: 92388.66, Price: 43.02},
						{ID: "404.D", Code: "404.D", Description: "ENROCADO Y ACOMODO EN UÑA ANTISOCAVANTE TIPO 1", Unit: "m3", Metrado: 41965.43, Price: 19.36},
						{ID: "404.E", Code: "404.E", Description: "ENROCADO Y ACOMODO EN UÑA ANTISOCAVANTE TIPO 2", Unit: "m3", Metrado: 86134.53, Price: 19.36},
						{ID: "405.A", Code: "405.A", Description: "DESCOLMATACIÓN DEL CAUCE", Unit: "m3", Metrado: 208346.46, Price: 12.16},
						{ID: "406.A", Code: "406.A", Description: "REFINE Y PERFILADO DE TALUD", Unit: "m2", Metrado: 118012.29, Price: 2.80},
						{ID: "407.A", Code: "407.A", Description: "MEJORAMIENTO DE SUELO DE FUNDACIÓN", Unit: "m2", Metrado: 0.00, Price: 0.00},
						{ID: "408.A", Code: "408.A", Description: "ZANJA Y RELLENO PARA ANCLAJE DE GEOTEXTIL", Unit: "ml", Metrado: 3145.53, Price: 19.72},
						{ID: "409.A", Code: "409.A", Description: "GEOTEXTIL NO TEJIDO CLASE 1, INCLUYE INSTALACION", Unit: "m2", Metrado: 285110.29, Price: 12.57},
						{ID: "409.B", Code: "409.B", Description: "GEOTEXTIL NO TEJIDO CLASE 2, INCLUYE INSTALACION", Unit: "m2", Metrado: 30086.40, Price: 8.49},
						{ID: "410.A", Code: "410.A", Description: "CONFORMACIÓN DE DME/DMO", Unit: "m3", Metrado: 519377.54, Price: 3.51},
						{ID: "410.B", Code: "410.B", Description: "CONFORMACIÓN DE MATERIAL EXCEDENTE EN TRASDOS DE DIQUE", Unit: "m3", Metrado: 0.00, Price: 0.00},
						{ID: "412.A", Code: "412.A", Description: "RELLENO COMPACTADO CON MATERIAL PARA AFIRMADO EN CORONA", Unit: "m3", Metrado: 15144.09, Price: 20.84},
						{ID: "413.A", Code: "413.A", Description: "RELLENO CON MATERIAL PROPIO", Unit: "m3", Metrado: 48850.10, Price: 5.31},
						{ID: "414.A", Code: "414.A", Description: "TRATAMIENTO DE TALUD CON GEOCELDAS", Unit: "m2", Metrado: 24705.23, Price: 77.37},
						{ID: "416.A", Code: "416.A", Description: "PERFILADO Y COMPACTACIÓN PARA FUNDACIÓN DE DIQUE", Unit: "m2", Metrado: 0.00, Price: 0.00},
					},
				},
				{
					ID: "B2", Code: "B2", Name: "REFUERZO EN DIQUES EXISTENTES",
					Items: []services.BudgetItem{
						{ID: "402.B_R", Code: "402.B", Description: "EXCAVACIÓN MASIVA EN MATERIAL SUELTO, CON EQUIPO", Unit: "m3", Metrado: 68304.01, Price: 10.68},
						{ID: "402.C_R", Code: "402.C", Description: "EXCAVACIÓN EN ROCA SUELTA CON EQUIPO", Unit: "m3", Metrado: 689.94, Price: 18.38},
						{ID: "402.E_R", Code: "402.E", Description: "EXCAVACION DE UÑA EN MATERIAL CON NIVEL FREATICO", Unit: "m3", Metrado: 25731.75, Price: 12.12},
						{ID: "403.A_R", Code: "403.A", Description: "CONFORMACIÓN Y COMPACTACIÓN DE DIQUE", Unit: "m3", Metrado: 24010.13, Price: 14.26},
						{ID: "403.B_R", Code: "403.B", Description: "RECRECIMIENTO Y CONFORMACION EN DIQUE EXISTENTE", Unit: "m3", Metrado: 19231.97, Price: 15.85},
						{ID: "404.G", Code: "404.G", Description: "ENROCADO Y ACOMODO DE ROCA EN TALUD DE DIQUE EXISTENTE", Unit: "m3", Metrado: 29970.61, Price: 43.02},
						{ID: "404.H", Code: "404.H", Description: "ENROCADO Y ACOMODO DE ROCA EN UÑA DE DIQUE EXISTENTE", Unit: "m3", Metrado: 18918.89, Price: 19.36},
						{ID: "406.A_R", Code: "406.A'", Description: "REFINE Y PERFILADO DE TALUD", Unit: "m3", Metrado: 0.00, Price: 2.80},
						{ID: "409.A_R", Code: "409.A", Description: "GEOTEXTIL NO TEJIDO CLASE 1, INCLUYE INSTALACION", Unit: "m2", Metrado: 52118.59, Price: 12.57},
						{ID: "412.A_R", Code: "412.A", Description: "RELLENO COMPACTADO CON MATERIAL PARA AFIRMADO EN CORONA", Unit: "m3", Metrado: 10428.50, Price: 20.84},
						{ID: "413.A_R", Code: "413.A", Description: "RELLENO CON MATERIAL PROPIO", Unit: "m3", Metrado: 8911.49, Price: 5.31},
						{ID: "415.A", Code: "415.A", Description: "GAVIÓN (INCLUYE INSTALACIÓN)", Unit: "m3", Metrado: 8879.92, Price: 297.43},
						{ID: "416.B", Code: "416.B", Description: "PERFILADO Y COMPACTACION DE CORONA EN DIQUE EXISTENTE", Unit: "m3", Metrado: 52142.50, Price: 3.29},
						{ID: "417.A", Code: "417.A", Description: "RECUPERACION DE ROCA EN DIQUES EXISTENTES", Unit: "m3", Metrado: 63929.25, Price: 37.17},
					},
				},
				{
					ID: "500", Code: "500", Name: "TRANSPORTES DE MATERIAL",
					Items: []services.BudgetItem{
						{ID: "501.A", Code: "501.A", Description: "CARGUIO Y ACARREO DE MATERIAL PROPIO P/DIQUE D<=1km", Unit: "m3-km", Metrado: 204289.91, Price: 9.65},
						{ID: "502.A", Code: "502.A", Description: "ACARREO DE MATERIAL PROPIO P/DIQUE D>1km", Unit: "m3-km", Metrado: 66579.12, Price: 2.62},
						{ID: "501.D", Code: "501.D", Description: "CARGUIO Y TRANSPORTE DE MATERIAL AFIRMADO D<=1KM", Unit: "m3-km", Metrado: 26074.68, Price: 9.65},
						{ID: "502.D", Code: "502.D", Description: "TRANSPORTE DE MATERIAL AFIRMADO D>1KM", Unit: "m3-km", Metrado: 421140.23, Price: 2.62},
						{ID: "503.B", Code: "503.B", Description: "CARGUIO Y TRANSPORTE DE MATERIAL EXCEDENTE CON EQUIPO D<= 1km", Unit: "m3-km", Metrado: 457052.22, Price: 10.04},
						{ID: "504.B", Code: "504.B", Description: "TRANSPORTE DE MATERIAL EXCEDENTE CON EQUIPO D> 1km", Unit: "m3-km", Metrado: 9595410.80, Price: 2.75},
						{ID: "505.B", Code: "505.B", Description: "CARGUIO Y TRANSPORTE DE ROCA SELECCIONADA D<=1km", Unit: "m3-km", Metrado: 254678.93, Price: 12.85},
						{ID: "506.A", Code: "506.A", Description: "TRANSPORTE DE ROCA SELECCIONADA D >1km", Unit: "m3-km", Metrado: 2537049.44, Price: 3.04},
					},
				},
			},
		},
		{
			ID:   "C1",
			Name: "C1 - OBRAS DE RIEGO",
			Groups: []services.BudgetGroup{
				{
					ID: "400", Code: "400", Name: "MOVIMIENTO DE TIERRAS",
					Items: []services.BudgetItem{
						{ID: "402.B_RI", Code: "402.B", Description: "EXCAVACIÓN EN MATERIAL SUELTO, CON EQUIPO", Unit: "m3", Metrado: 5519.03, Price: 12.60},
						{ID: "403.C", Code: "403.C", Description: "CONFORMACIÓN Y COMPACTACIÓN PARA ESTRUCTURA", Unit: "m3", Metrado: 418.05, Price: 63.69},
						{ID: "404.F", Code: "404.F", Description: "ENROCADO Y ACOMODO DE ROCA", Unit: "m3", Metrado: 1162.62, Price: 43.02},
						{ID: "413.A_RI", Code: "413.A", Description: "RELLENO CON MATERIAL PROPIO", Unit: "m3", Metrado: 1211.22, Price: 5.31},
						{ID: "609.A", Code: "609.A", Description: "EMBOQUILLADO DE PIEDRA CON CONCRETO", Unit: "m3", Metrado: 169.85, Price: 384.10},
						{ID: "801.A", Code: "801.A", Description: "CONCRETO PREMEZCLADO (f'c = 10 MPa) PARA SOLADO", Unit: "m3", Metrado: 24.70, Price: 415.99},
						{ID: "801.B", Code: "801.B", Description: "CONCRETO CICLOPEO (f'c = 14 Mpa + 30% P.M.)", Unit: "m3", Metrado: 196.47, Price: 353.11},
						{ID: "801.B1", Code: "801.B1", Description: "CONCRETO (f'c = 14 Mpa)", Unit: "m3", Metrado: 313.23, Price: 431.16},
						{ID: "801.D", Code: "801.D", Description: "CONCRETO (f'c = 28 MPa) EN MUROS Y ZAPATAS", Unit: "m3", Metrado: 569.33, Price: 608.87},
						{ID: "802.A", Code: "802.A", Description: "ACERO DE REFUERZO P/ESTRUCTURAS (fy= 420 Mpa)", Unit: "kg", Metrado: 16154.99, Price: 8.04},
						{ID: "803.A", Code: "803.A", Description: "ENCOFRADO PLANO", Unit: "m2", Metrado: 2363.27, Price: 61.02},
						{ID: "803.B", Code: "803.B", Description: "ENCOFRADO CURVO", Unit: "m2", Metrado: 140.86, Price: 141.79},
						{ID: "805.A", Code: "805.A", Description: "TUBERÍA HDPE 600 mm (SUMINISTRO E INSTALACIÓN)", Unit: "ml", Metrado: 83.81, Price: 648.22},
						{ID: "805.B", Code: "805.B", Description: "TUBERÍA HDPE 750 mm (SUMINISTRO E INSTALACIÓN)", Unit: "ml", Metrado: 24.70, Price: 1528.76},
						{ID: "805.D", Code: "805.D", Description: "TUBERÍA HDPE 1000 mm (SUMINISTRO E INSTALACIÓN)", Unit: "ml", Metrado: 118.10, Price: 2253.77},
					},
				},
			},
		},
		{
			ID:   "C4",
			Name: "C4 - CRUCE VIAL",
			Groups: []services.BudgetGroup{
				{
					ID: "C4_ALL", Code: "C4", Name: "OBRAS DE ARTE Y DRENAJE",
					Items: []services.BudgetItem{
						{ID: "402.B_V", Code: "402.B", Description: "EXCAVACIÓN MASIVA EN MATERIAL SUELTO", Unit: "m3", Metrado: 26204.08, Price: 7.62},
						{ID: "404.A_V", Code: "404.A", Description: "ENROCADO Y ACOMODO DE ROCA PARA PROTECCIÓN DE TALUD TIPO 1", Unit: "m3", Metrado: 6899.79, Price: 43.02},
						{ID: "801.D_V", Code: "801.D", Description: "CONCRETO (f'c = 28 MPa) EN MUROS Y ZAPATAS", Unit: "m3", Metrado: 2026.15, Price: 608.87},
					},
				},
			},
		},
	}
}

var seedMeasurements = []services.Measurement{
	{
		ID:           "1",
		DikeID:       "DIPR_05_MI_RG",
		PK:           "8+900.00",
		Distancia:    0.00,
		TipoTerreno:  "B2",
		TipoEnrocado: "TIPO 2",
		Intervencion: "PROTECCION DE TALUD CON ENROCADO",

		Item403AContractual:   0.50,
		CorteRocaRecuperacion: 5.150,
		Item402BContractual:   0.090,
		Item402ENivelFreatico: 8.840,
		Item404TaludT1:        7.750,
		Item404UnaT1:          8.840,
		Item413AContractual:   2.480,
		Item412AAfirmado:      0.620,
		Item406APerfilado:     0.070,
		Item409AGeotextil:     11.240,
		Carguio:               1,
	},
	{
		ID:           "2",
		DikeID:       "DIPR_05_MI_RG",
		PK:           "8+920.01",
		Distancia:    20.010,
		TipoTerreno:  "B2",
		TipoEnrocado: "TIPO 2",
		Intervencion: "PROTECCION DE TALUD CON ENROCADO",

		Item403AContractual:   0.820,
		Item403ARep:           0.460,
		CorteRocaRecuperacion: 4.460,
		Item402BContractual:   0.420,
		Item402ENivelFreatico: 8.830,
		Item404TaludT1:        7.750,
		Item404UnaT1:          8.830,
		Item413AContractual:   2.480,
		Item412AAfirmado:      0.620,
		Item406APerfilado:     2.190,
		Item409AGeotextil:     11.230,
		Carguio:               1,
	},
}

var seedProgressEntries = []services.ProgressEntry{
	{
		ID:            "INIT_PROG_1",
		Date:          "2024-08-15",
		DikeID:        "DIPR_002_MD",
		ProgInicio:    "0+000",
		ProgFin:       "0+050",
		Longitud:      50.00,
		TipoTerreno:   "B1",
		TipoEnrocado:  "TIPO 1",
		Partida:       "402.B",
		Capa:          "Capa 1",
		Observaciones: "Avance importado: Excavación Masiva",
	},
}

// Seed populates the database with the project's contractual baseline:
// sectors, dikes, the budget template per sector, and a couple of sample
// records. It returns early if any sector records already exist.
func Seed(app *pocketbase.PocketBase) error {
	// ── idempotency: skip if sectors already exist ───────────────────
	sectorsCol, err := app.FindCollectionByNameOrId("sectors")
	if err != nil {
		return fmt.Errorf("seed: could not find sectors collection: %w", err)
	}
	existing, err := app.FindAllRecords(sectorsCol)
	if err != nil {
		return fmt.Errorf("seed: could not query sectors: %w", err)
	}
	if len(existing) > 0 {
		return nil // already seeded
	}

	log.Println("seed: sectors collection is empty – inserting seed data …")

	dikesCol, err := app.FindCollectionByNameOrId("dikes")
	if err != nil {
		return fmt.Errorf("seed: find dikes collection: %w", err)
	}
	measurementsCol, err := app.FindCollectionByNameOrId("measurements")
	if err != nil {
		return fmt.Errorf("seed: find measurements collection: %w", err)
	}
	progressCol, err := app.FindCollectionByNameOrId("progress_entries")
	if err != nil {
		return fmt.Errorf("seed: find progress_entries collection: %w", err)
	}

	// ── sectors ──────────────────────────────────────────────────────
	for i, d := range seedSectors {
		r := core.NewRecord(sectorsCol)
		r.Set("id", d.id)
		r.Set("name", d.name)
		r.Set("sort_order", i)
		if err := app.Save(r); err != nil {
			return fmt.Errorf("seed: save sector %q: %w", d.id, err)
		}
	}

	// ── dikes ────────────────────────────────────────────────────────
	for i, d := range seedDikes {
		r := core.NewRecord(dikesCol)
		r.Set("id", d.id)
		services.ApplyDikeToRecord(r, services.Dike{
			ID:              d.id,
			SectorID:        d.sectorID,
			Name:            d.name,
			ProgInicioRio:   d.progInicioRio,
			ProgFinRio:      d.progFinRio,
			ProgInicioDique: d.progInicioDique,
			ProgFinDique:    d.progFinDique,
			TotalML:         d.totalML,
		})
		r.Set("sort_order", i)
		if err := app.Save(r); err != nil {
			return fmt.Errorf("seed: save dike %q: %w", d.id, err)
		}
	}

	// ── budgets: every sector starts from the contractual template ───
	for _, s := range seedSectors {
		if err := services.SaveBudget(app, "sector", s.id, InitialBudget()); err != nil {
			return fmt.Errorf("seed: save budget for sector %q: %w", s.id, err)
		}
	}

	// ── sample measurements ──────────────────────────────────────────
	for i, m := range seedMeasurements {
		r := core.NewRecord(measurementsCol)
		r.Set("id", m.ID)
		if err := services.ApplyMeasurementToRecord(r, m); err != nil {
			return fmt.Errorf("seed: encode measurement %q: %w", m.ID, err)
		}
		r.Set("sort_order", i)
		if err := app.Save(r); err != nil {
			return fmt.Errorf("seed: save measurement %q: %w", m.ID, err)
		}
	}

	// ── sample progress entries ──────────────────────────────────────
	for _, e := range seedProgressEntries {
		r := core.NewRecord(progressCol)
		r.Set("id", e.ID)
		services.ApplyProgressEntryToRecord(r, e)
		if err := app.Save(r); err != nil {
			return fmt.Errorf("seed: save progress entry %q: %w", e.ID, err)
		}
	}

	log.Printf("seed: all seed data inserted successfully (%d sectors, %d dikes, %d measurements, %d progress entries)",
		len(seedSectors), len(seedDikes), len(seedMeasurements), len(seedProgressEntries))
	return nil
}
