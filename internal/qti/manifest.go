package qti

import (
	"time"

	"github.com/longhornadam/QuizForge-sub000/internal/detrand"
)

const (
	manifestNamespace = "http://www.imsglobal.org/xsd/imsccv1p1/imscp_v1p1"
	lomNamespace      = "http://ltsc.ieee.org/xsd/imsccv1p1/LOM/resource"
	imsmdNamespace    = "http://www.imsglobal.org/xsd/imsmd_v1p2"

	manifestSchemaLocation = manifestNamespace + " http://www.imsglobal.org/xsd/imscp_v1p1.xsd " +
		lomNamespace + " http://www.imsglobal.org/profile/cc/ccv1p1/LOM/ccv1p1_lomresource_v1p0.xsd " +
		imsmdNamespace + " http://www.imsglobal.org/xsd/imsmd_v1p2p2.xsd"
)

// BuildManifest renders imsmanifest.xml. The assessment resource is
// identified by the shared package token, which is also the container
// folder name; the metadata resource hangs off it as a dependency.
func BuildManifest(title string, ids *detrand.Idents) string {
	root := newElement("manifest",
		attr{"xmlns", manifestNamespace},
		attr{"xmlns:lom", lomNamespace},
		attr{"xmlns:imsmd", imsmdNamespace},
		attr{"xmlns:xsi", xsiNamespace},
		attr{"identifier", ids.ManifestID},
		attr{"xsi:schemaLocation", manifestSchemaLocation},
	)

	md := root.child("metadata")
	md.child("schema").withText("IMS Content")
	md.child("schemaversion").withText("1.1.3")
	lom := md.child("imsmd:lom")
	lom.child("imsmd:general").child("imsmd:title").child("imsmd:string").withText(title)
	lom.child("imsmd:lifeCycle").child("imsmd:contribute").child("imsmd:date").
		child("imsmd:dateTime").withText(time.Now().Format("2006-01-02"))

	root.child("organizations")

	folder := ids.GUID
	resources := root.child("resources")
	assessment := resources.child("resource",
		attr{"identifier", ids.GUID}, attr{"type", "imsqti_xmlv1p2"})
	assessment.child("file", attr{"href", folder + "/" + ids.GUID + ".xml"})
	assessment.child("dependency", attr{"identifierref", ids.MetaResourceID})

	meta := resources.child("resource",
		attr{"identifier", ids.MetaResourceID},
		attr{"type", "associatedcontent/imscc_xmlv1p1/learning-application-resource"},
		attr{"href", folder + "/assessment_meta.xml"})
	meta.child("file", attr{"href", folder + "/assessment_meta.xml"})

	return serialize(root)
}
